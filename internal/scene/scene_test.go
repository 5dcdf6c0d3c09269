package scene

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"croptastic/internal/geometry"
)

func square(t *testing.T, p *Paper, cx, cy, side float64) *Shape {
	t.Helper()
	s, err := p.Path(geometry.PointsToPath(geometry.SquareAroundPoint(cx, cy, side)))
	require.NoError(t, err)
	return s.(*Shape)
}

func ids(p *Paper) []int {
	var out []int
	for _, el := range p.Snapshot().Elements {
		out = append(out, el.ID)
	}
	return out
}

func TestZOrder(t *testing.T) {
	p := NewPaper(geometry.Point{}, 100, 100, nil)
	a := square(t, p, 10, 10, 4)
	b := square(t, p, 20, 20, 4)
	c := square(t, p, 30, 30, 4)
	assert.Equal(t, []int{a.ID(), b.ID(), c.ID()}, ids(p))

	a.ToFront()
	assert.Equal(t, []int{b.ID(), c.ID(), a.ID()}, ids(p))
	c.ToBack()
	assert.Equal(t, []int{c.ID(), b.ID(), a.ID()}, ids(p))
	b.Remove()
	assert.Equal(t, []int{c.ID(), a.ID()}, ids(p))
	assert.True(t, b.Removed())

	p.Clear()
	assert.Equal(t, 0, p.Len())
	assert.True(t, a.Removed())
}

func TestPathRejectsGarbage(t *testing.T) {
	p := NewPaper(geometry.Point{}, 10, 10, nil)
	_, err := p.Path("C1,2 3,4")
	assert.ErrorIs(t, err, geometry.ErrBadPath)
}

func TestPointerDispatch(t *testing.T) {
	p := NewPaper(geometry.Point{X: 100, Y: 50}, 200, 200, nil)
	below := square(t, p, 50, 50, 40)
	above := square(t, p, 60, 60, 20)

	type move struct{ dx, dy, x, y float64 }
	var (
		moves   []move
		started []geometry.Point
		ended   int
	)
	above.Drag(
		func(dx, dy, x, y float64) { moves = append(moves, move{dx, dy, x, y}) },
		func(x, y float64) { started = append(started, geometry.Point{X: x, Y: y}) },
		func() { ended++ },
	)
	below.Drag(func(_, _, _, _ float64) { t.Fatal("covered shape got the drag") }, nil, nil)

	assert.False(t, p.PointerDown(0, 0), "outside the paper")
	require.True(t, p.PointerDown(160, 110))
	assert.True(t, p.Dragging())
	assert.False(t, p.PointerDown(160, 110), "one drag at a time")

	p.PointerMove(165, 112)
	p.PointerMove(170, 100)
	p.PointerUp()
	p.PointerUp()
	p.PointerMove(0, 0)

	assert.Equal(t, []geometry.Point{{X: 160, Y: 110}}, started)
	assert.Equal(t, []move{{5, 2, 165, 112}, {10, -10, 170, 100}}, moves)
	assert.Equal(t, 1, ended)
	assert.False(t, p.Dragging())
}

func TestHitTestFollowsTransform(t *testing.T) {
	p := NewPaper(geometry.Point{}, 200, 200, nil)
	s := square(t, p, 10, 10, 10)
	s.SetCursor("move")
	s.Transform(geometry.Translate(100, 0))

	assert.Nil(t, p.ShapeAt(10, 10))
	assert.Same(t, s, p.ShapeAt(110, 10))
	assert.Equal(t, "move", p.CursorAt(110, 10))
	assert.Equal(t, "", p.CursorAt(10, 10))
}

func TestHitTestHole(t *testing.T) {
	p := NewPaper(geometry.Point{}, 100, 100, nil)
	outer := geometry.RectangleAroundPoint(50, 50, 100, 100)
	inner := geometry.Reverse(geometry.RectangleAroundPoint(50, 50, 20, 20))
	_, err := p.Path(geometry.PointsToPath(outer) + geometry.PointsToPath(inner))
	require.NoError(t, err)

	assert.NotNil(t, p.ShapeAt(5, 5))
	assert.Nil(t, p.ShapeAt(50, 50))
}

func TestGroupTransform(t *testing.T) {
	p := NewPaper(geometry.Point{}, 100, 100, nil)
	a := square(t, p, 10, 10, 2)
	b := square(t, p, 20, 20, 2)
	g := p.Group(a, b)
	g.Transform(geometry.Translate(3, 4))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, geometry.Translate(3, 4), a.Matrix())
	assert.Equal(t, geometry.Translate(3, 4), b.Matrix())
}

func TestRenderShadeHole(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range bg.Pix {
		bg.Pix[i] = 0xff
	}
	p := NewPaper(geometry.Point{}, 40, 30, MapLoader{"bg": NewPicture(bg)})
	_, err := p.Image("bg", 0, 0, 40, 30)
	require.NoError(t, err)

	outer := geometry.RectangleAroundPoint(20, 15, 40, 30)
	inner := geometry.Reverse(geometry.RectangleAroundPoint(20, 15, 10, 10))
	shade, err := p.Path(geometry.PointsToPath(outer) + geometry.PointsToPath(inner))
	require.NoError(t, err)
	shade.SetFill("#000000")
	shade.SetOpacity(1)
	shade.(*Shape).SetStroke("none")

	img := p.Render()
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(2, 2), "shaded")
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.RGBAAt(20, 15), "hole shows the picture")
}

func TestRenderOpacity(t *testing.T) {
	p := NewPaper(geometry.Point{}, 10, 10, nil)
	s := square(t, p, 5, 5, 10)
	s.SetFill("red")
	s.SetOpacity(0.5)
	s.SetStroke("none")
	c := p.Render().RGBAAt(5, 5)
	assert.InDelta(t, 128, int(c.A), 1)
	assert.InDelta(t, 128, int(c.R), 1)
	assert.Zero(t, c.G)

	s.SetFill("transparent")
	assert.Equal(t, color.RGBA{}, p.Render().RGBAAt(5, 5))
}

func TestParseColor(t *testing.T) {
	c, ok := parseColor("#949393", 0.7)
	require.True(t, ok)
	assert.Equal(t, []uint8{0x94, 0x93, 0x93}, []uint8{c.R, c.G, c.B})
	assert.InDelta(t, 178, int(c.A), 1)

	c, ok = parseColor("#fff", 1)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	for _, s := range []string{"", "none", "transparent", "#12", "#gggggg", "notacolor"} {
		_, ok := parseColor(s, 1)
		assert.False(t, ok, s)
	}
}

func TestCanvasDrawImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	c := NewCanvas(20, 20)
	w, h := c.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 20, h)
	assert.Equal(t, "canvas", c.TagName())

	// left half of the source region lies outside the picture
	c.DrawImage(src, geometry.Rect{X: -10, Y: 0, W: 20, H: 10}, geometry.Rect{W: 20, H: 20})
	assert.Equal(t, color.RGBA{}, c.Image().RGBAAt(2, 10))
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, c.Image().RGBAAt(15, 10))

	c.Clear()
	assert.Equal(t, color.RGBA{}, c.Image().RGBAAt(15, 10))

	c.DrawImage(src, geometry.Rect{X: 50, Y: 50, W: 5, H: 5}, geometry.Rect{W: 20, H: 20})
	assert.Equal(t, color.RGBA{}, c.Image().RGBAAt(15, 10))
}

func TestPicture(t *testing.T) {
	p := NewPendingPicture()
	w, h := p.NaturalSize()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Nil(t, p.Image())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded)

	p.Resolve(image.NewRGBA(image.Rect(0, 0, 7, 3)))
	p.Fail(os.ErrClosed)
	require.NoError(t, p.Wait(context.Background()))
	w, h = p.NaturalSize()
	assert.Equal(t, 7.0, w)
	assert.Equal(t, 3.0, h)
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imaging.Save(imaging.New(12, 8, color.White), filepath.Join(dir, "a.png")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o644))

	l := FileLoader{Root: dir}
	pic, err := l.Load("a.png")
	require.NoError(t, err)
	require.NoError(t, pic.(*Picture).Wait(context.Background()))
	w, h := pic.NaturalSize()
	assert.Equal(t, 12.0, w)
	assert.Equal(t, 8.0, h)

	// ".." cannot climb out of the root
	pic, err = l.Load("../../a.png")
	require.NoError(t, err)
	require.NoError(t, pic.(*Picture).Wait(context.Background()))

	_, err = l.Load("missing.png")
	assert.ErrorIs(t, err, os.ErrNotExist)

	pic, err = l.Load("broken.png")
	require.NoError(t, err)
	assert.Error(t, pic.(*Picture).Wait(context.Background()))
}

func TestPaperImage(t *testing.T) {
	p := NewPaper(geometry.Point{}, 10, 10, nil)
	_, err := p.Image("x", 0, 0, 1, 1)
	assert.Error(t, err)

	pic := NewPicture(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	p = NewPaper(geometry.Point{}, 10, 10, MapLoader{"x": pic})
	img, err := p.Image("x", 1, 2, 3, 4)
	require.NoError(t, err)
	w, h := img.Size()
	assert.Equal(t, 3.0, w)
	assert.Equal(t, 4.0, h)
	assert.Same(t, pic, img.Picture())
}

func TestSnapshot(t *testing.T) {
	p := NewPaper(geometry.Point{}, 50, 40, MapLoader{"bg": NewPicture(image.NewRGBA(image.Rect(0, 0, 1, 1)))})
	_, err := p.Image("bg", 0, 0, 50, 40)
	require.NoError(t, err)
	s := square(t, p, 10, 10, 4)
	s.SetFill("#949393")
	s.SetOpacity(0.7)
	s.SetCursor("ew-resize")
	s.Transform(geometry.Translate(1, 2))

	want := Snapshot{
		Width:  50,
		Height: 40,
		Elements: []ElementState{
			{ID: 1, Kind: "image", Opacity: 1, Src: "bg", Box: &geometry.Rect{W: 50, H: 40}},
			{ID: 2, Kind: "path", D: "M9,10 L13,10 L13,14 L9,14 Z", Fill: "#949393", Stroke: "#000", Opacity: 0.7, Cursor: "ew-resize"},
		},
	}
	if diff := cmp.Diff(want, p.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
