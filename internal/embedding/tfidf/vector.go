package tfidf

// Vector is a sparse term-weight vector. Indices are strictly increasing
// vocabulary positions and Weights[i] belongs to Indices[i]. Dim is the
// vocabulary size of the model that produced it; vectors from different
// models are not comparable.
type Vector struct {
	Dim     int
	Indices []int
	Weights []float64
}

// NNZ returns the number of stored non-zero entries.
func (v Vector) NNZ() int { return len(v.Indices) }

// SquaredDistance returns the squared Euclidean distance between a and b by
// merging their sorted indices. Identical vectors yield exactly 0.
func SquaredDistance(a, b Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			d := a.Weights[i] - b.Weights[j]
			sum += d * d
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			sum += a.Weights[i] * a.Weights[i]
			i++
		default:
			sum += b.Weights[j] * b.Weights[j]
			j++
		}
	}
	for ; i < len(a.Indices); i++ {
		sum += a.Weights[i] * a.Weights[i]
	}
	for ; j < len(b.Indices); j++ {
		sum += b.Weights[j] * b.Weights[j]
	}
	return sum
}
