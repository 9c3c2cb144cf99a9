package catalog

import "strconv"

// encodeVector serializes an embedding to the pgvector text literal,
// e.g. "[0.1,0.2,0.3]".
func encodeVector(v []float32) string {
	buf := make([]byte, 0, len(v)*10+2)
	buf = append(buf, '[')
	for i, x := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, float64(x), 'g', -1, 32)
	}
	buf = append(buf, ']')
	return string(buf)
}
