package speckle

import (
	"math"
)

// Point is a particle position in the image plane
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// Sample is a single tracked position of a particle on a given frame
type Sample struct {
	X     float64
	Y     float64
	Frame int
}

func NewSample(x, y float64, frame int) Sample {
	return Sample{
		X:     x,
		Y:     y,
		Frame: frame,
	}
}

// Point returns sample's position without frame
func (sample Sample) Point() Point {
	return Point{X: sample.X, Y: sample.Y}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

func squaredDistance(p1, p2 Point) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return dx*dx + dy*dy
}
