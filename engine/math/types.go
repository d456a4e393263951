package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief Represents a single vertex in 2D space. Laid out as four packed
 * float32 values (16 bytes): position at offset 0, texcoord at offset 8.
 */
type Vertex2D struct {
	/** @brief The position of the vertex */
	Position Vec2
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
}

/** @brief An 8-bit per channel colour. */
type RGBA8 struct {
	R, G, B, A uint8
}
