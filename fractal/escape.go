package fractal

// Boundary is the squared escape radius.
const Boundary = 4.0

// EscapeTime iterates z = z^2 + c and returns the number of iterations done before |z|^2 exceeded
// Boundary. member is true exactly when the loop used the whole budget (iterations == maxIterations),
// so a maxIterations of 0 never enters the loop and always reports membership.
//
// For Mandelbrot z starts at 0 and c is point; for Julia z starts at point and c is constant.
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Optimized_escape_time_algorithms
func EscapeTime(kernel Kernel, point Complex, constant Complex, maxIterations int) (iterations int, member bool) {
	var x, y, cx, cy float64
	if kernel == Julia {
		x, y = point.Re, point.Im
		cx, cy = constant.Re, constant.Im
	} else {
		cx, cy = point.Re, point.Im
	}

	x2, y2 := x*x, y*y
	for x2+y2 <= Boundary && iterations < maxIterations {
		y = 2*x*y + cy
		x = x2 - y2 + cx
		x2 = x * x
		y2 = y * y
		iterations++
	}

	return iterations, iterations == maxIterations
}
