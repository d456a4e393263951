package renderer

import "github.com/spaghettifunk/tinted/engine/math"

// QuadVertices are the two triangles of the logo quad.
var QuadVertices = []math.Vertex2D{
	{Position: math.NewVec2(-0.5, 0.33), Texcoord: math.NewVec2(0, 1)},
	{Position: math.NewVec2(0.5, 0.33), Texcoord: math.NewVec2(1, 1)},
	{Position: math.NewVec2(0.5, -0.33), Texcoord: math.NewVec2(1, 0)},

	{Position: math.NewVec2(-0.5, 0.33), Texcoord: math.NewVec2(0, 1)},
	{Position: math.NewVec2(0.5, -0.33), Texcoord: math.NewVec2(1, 0)},
	{Position: math.NewVec2(-0.5, -0.33), Texcoord: math.NewVec2(0, 0)},
}
