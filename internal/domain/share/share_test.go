package share

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	convey.Convey("Build formats one line per entry between header and footer", t, func() {
		text := Build("Q?", []Entry{{Name: "French", Text: "Bonjour", Score: 9.0}})
		convey.So(text, convey.ShouldContainSubstring, "French: Bonjour (9.0/10)")
		convey.So(text, convey.ShouldEqual,
			"💭 BabelLM Analysis\n\n❓ Question: Q?\n\nFrench: Bonjour (9.0/10)\n\n🌐 Try it at babellm.ai")
	})

	convey.Convey("Scores are rounded to one decimal place and order is kept", t, func() {
		text := Build("Why?", []Entry{
			{Name: "Spanish", Text: "Hola", Score: 7.26},
			{Name: "German", Text: "Hallo", Score: 4},
		})
		lines := strings.Split(text, "\n")
		convey.So(lines[4], convey.ShouldEqual, "Spanish: Hola (7.3/10)")
		convey.So(lines[5], convey.ShouldEqual, "German: Hallo (4.0/10)")
	})

	convey.Convey("An empty entry list still yields header and footer", t, func() {
		text := Build("Q", nil)
		convey.So(text, convey.ShouldStartWith, "💭 BabelLM Analysis")
		convey.So(text, convey.ShouldEndWith, "🌐 Try it at babellm.ai")
	})

	convey.Convey("BuildInvite joins translations ahead of the call to action", t, func() {
		invite := BuildInvite([]string{"Bonjour", "Hola"})
		convey.So(invite, convey.ShouldStartWith, "Bonjour Hola\n\n")
		convey.So(invite, convey.ShouldContainSubstring, "Can you guess how the AI will respond?")
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender(t *testing.T) {
	card := Card{
		Question: "What is the meaning of life?",
		Rows: []Row{
			{FlagCode: "fr", Text: "Le sens de la vie", Score: 9},
			{FlagCode: "jp", Text: "人生の意味", Fallback: "The meaning of life", Score: 6.5},
			{FlagCode: "de", Text: "Der Sinn des Lebens", Score: 0},
		},
	}
	r := NewRenderer()

	convey.Convey("Render produces a 1200x630 PNG", t, func() {
		blob, err := r.Render(card)
		convey.So(err, convey.ShouldBeNil)
		img, err := png.Decode(bytes.NewReader(blob))
		convey.So(err, convey.ShouldBeNil)
		convey.So(img.Bounds().Dx(), convey.ShouldEqual, CardWidth)
		convey.So(img.Bounds().Dy(), convey.ShouldEqual, CardHeight)
	})

	convey.Convey("The canvas keeps the background in the corners", t, func() {
		img := r.Draw(card)
		convey.So(img.RGBAAt(0, 0), convey.ShouldResemble, colorBackground)
		convey.So(img.RGBAAt(CardWidth-1, CardHeight-1), convey.ShouldResemble, colorBackground)
	})

	convey.Convey("Higher scores draw longer bars", t, func() {
		full := r.Draw(Card{Rows: []Row{{FlagCode: "fr", Text: "a", Score: 10}}})
		empty := r.Draw(Card{Rows: []Row{{FlagCode: "fr", Text: "a", Score: 0}}})
		barY := rowsTop + rowHeight - 14
		accent := 0
		for x := 0; x < CardWidth; x++ {
			if full.RGBAAt(x, barY) == colorAccent {
				accent++
			}
			convey.So(empty.RGBAAt(x, barY), convey.ShouldNotResemble, colorAccent)
		}
		convey.So(accent, convey.ShouldBeGreaterThan, 500)
	})

	convey.Convey("Encoding failures are reported as ErrImageEncode", t, func() {
		err := r.RenderTo(failingWriter{}, card)
		convey.So(errors.Is(err, ErrImageEncode), convey.ShouldBeTrue)
	})

	convey.Convey("Long text is truncated to fit", t, func() {
		long := strings.Repeat("word ", 100)
		fitted := r.fit(long, 300, 2)
		convey.So(fitted, convey.ShouldEndWith, "...")
		convey.So(r.width(fitted, 2), convey.ShouldBeLessThanOrEqualTo, 300)
		convey.So(r.renderable("人生"), convey.ShouldBeFalse)
		convey.So(r.renderable("Hola"), convey.ShouldBeTrue)
	})
}
