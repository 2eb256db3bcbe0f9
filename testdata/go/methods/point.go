package geo

type Point struct {
	X int
	Y int
}

func (p *Point) Norm() int {
	return p.X * p.Y
}
