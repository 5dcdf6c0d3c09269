package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPath is returned by ParsePath for input outside the M/L/Z subset.
var ErrBadPath = errors.New("malformed path")

// PointsToPath serializes points into a closed path: a move to the first
// point, a line to each following point, and a close. Two serialized rings
// may be concatenated; the fill rule then decides on the winding of each.
func PointsToPath(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("M")
	writePoint(&sb, points[0])
	sb.WriteByte(' ')
	for _, p := range points[1:] {
		sb.WriteString("L")
		writePoint(&sb, p)
		sb.WriteByte(' ')
	}
	sb.WriteString("Z")
	return sb.String()
}

func writePoint(sb *strings.Builder, p Point) {
	sb.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
}

// ParsePath reads a path produced by PointsToPath (or concatenations of
// them) back into its rings.
func ParsePath(d string) ([][]Point, error) {
	var (
		rings [][]Point
		cur   []Point
	)
	for _, tok := range strings.Fields(d) {
		for tok != "" {
			cmd := tok[0]
			switch cmd {
			case 'Z', 'z':
				if len(cur) > 0 {
					rings = append(rings, cur)
					cur = nil
				}
				tok = tok[1:]
				continue
			case 'M', 'L':
			default:
				return nil, fmt.Errorf("%w: unexpected %q", ErrBadPath, tok)
			}

			// A coordinate pair may be glued to a following Z ("L1,2Z").
			arg := tok[1:]
			rest := ""
			if i := strings.IndexAny(arg, "MLZz"); i >= 0 {
				arg, rest = arg[:i], arg[i:]
			}
			p, err := parsePair(arg)
			if err != nil {
				return nil, err
			}
			if cmd == 'M' {
				if len(cur) > 0 {
					rings = append(rings, cur)
				}
				cur = []Point{p}
			} else {
				if cur == nil {
					return nil, fmt.Errorf("%w: line before move", ErrBadPath)
				}
				cur = append(cur, p)
			}
			tok = rest
		}
	}
	if len(cur) > 0 {
		rings = append(rings, cur)
	}
	return rings, nil
}

func parsePair(s string) (Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("%w: coordinate %q", ErrBadPath, s)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %w", ErrBadPath, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %w", ErrBadPath, err)
	}
	return Point{X: x, Y: y}, nil
}
