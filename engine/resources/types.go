package resources

import "image"

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown files are not indexed. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Shader resource type, WGSL source text. */
	ResourceTypeShader
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeShader:
		return "shader"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

// Text returns the source of a shader resource.
func (r *Resource) Text() (string, bool) {
	s, ok := r.Data.(string)
	return s, ok
}

// Image returns the pixels of an image resource.
func (r *Resource) Image() (*image.RGBA, bool) {
	img, ok := r.Data.(*image.RGBA)
	return img, ok
}
