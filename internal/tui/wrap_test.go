package tui

import (
	"reflect"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTextBreaksOnWords(t *testing.T) {
	got := wrapText("click the highlighted circle as fast as you can", 16)
	want := []string{"click the", "highlighted", "circle as fast", "as you can"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wrap:\n got %q\nwant %q", got, want)
	}
}

func TestWrapTextKeepsParagraphs(t *testing.T) {
	got := wrapText("first line\n\nsecond", 40)
	want := []string{"first line", "", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("ab abcdefghij", 4)
	want := []string{"ab", "abcd", "efgh", "ij"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	for _, line := range wrapText("点击 高亮 的 圆圈", 6) {
		if w := runewidth.StringWidth(line); w > 6 {
			t.Fatalf("line %q is %d cells wide", line, w)
		}
	}
}
