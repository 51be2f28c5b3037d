package chunk

import (
	"errors"
	"strings"
	"testing"
)

func collect(t *testing.T, template string, vars []string, bindings map[string]string, maxLen int) ([]string, error) {
	t.Helper()

	var urls []string
	for u, err := range URLs(template, vars, bindings, maxLen) {
		if err != nil {
			return urls, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func TestExpand(t *testing.T) {
	got, err := Expand("sources/{source}/series/{series}", map[string]string{
		"source": "2",
		"series": "SP.POP.TOTL",
	})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if got != "sources/2/series/SP.POP.TOTL" {
		t.Errorf("Expand = %q", got)
	}

	if _, err := Expand("sources/{source}", map[string]string{}); err == nil {
		t.Error("expected error for unbound token")
	}
}

func TestURLs_FitsWithoutChunking(t *testing.T) {
	urls, err := collect(t, "x/{v}", []string{"v"}, map[string]string{"v": "A;B;C"}, 50)
	if err != nil {
		t.Fatalf("URLs failed: %v", err)
	}
	if len(urls) != 1 || urls[0] != "x/A;B;C" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestURLs_NoChunkableVars(t *testing.T) {
	urls, err := collect(t, "sources/{source}", nil, map[string]string{"source": "2"}, 50)
	if err != nil {
		t.Fatalf("URLs failed: %v", err)
	}
	if len(urls) != 1 || urls[0] != "sources/2" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

// The ceiling forces a split; the emitted URLs must each fit and their value
// lists must partition the original with nothing lost, duplicated, or
// reordered.
func TestURLs_PartitionsOversizedList(t *testing.T) {
	value := strings.Repeat("A", 20) + ";" + strings.Repeat("B", 20) + ";" + strings.Repeat("C", 20)

	urls, err := collect(t, "x/{v}", []string{"v"}, map[string]string{"v": value}, 50)
	if err != nil {
		t.Fatalf("URLs failed: %v", err)
	}
	if len(urls) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(urls))
	}

	var parts []string
	for _, u := range urls {
		if len(u) >= 50 {
			t.Errorf("url exceeds ceiling: %q (%d chars)", u, len(u))
		}
		if !strings.HasPrefix(u, "x/") {
			t.Fatalf("unexpected url: %q", u)
		}
		parts = append(parts, strings.TrimPrefix(u, "x/"))
	}

	if got := strings.Join(parts, ";"); got != value {
		t.Errorf("chunks do not partition the original list:\n got %q\nwant %q", got, value)
	}
}

// A variable whose single token cannot be split falls back to the next
// chunkable variable in priority order.
func TestURLs_PriorityFallback(t *testing.T) {
	series := "SERIESTOKEN" // no semicolons, cannot be subdivided
	economies := make([]string, 10)
	for i := range economies {
		economies[i] = strings.Repeat(string(rune('A'+i)), 10)
	}
	economy := strings.Join(economies, ";")

	bindings := map[string]string{"series": series, "economy": economy}
	urls, err := collect(t, "{series}/{economy}", []string{"series", "economy"}, bindings, 60)
	if err != nil {
		t.Fatalf("URLs failed: %v", err)
	}
	if len(urls) < 2 {
		t.Fatalf("expected fallback chunking on economy, got %d urls", len(urls))
	}

	var parts []string
	for _, u := range urls {
		if len(u) >= 60 {
			t.Errorf("url exceeds ceiling: %q", u)
		}
		if !strings.HasPrefix(u, series+"/") {
			t.Fatalf("series token missing from %q", u)
		}
		parts = append(parts, strings.TrimPrefix(u, series+"/"))
	}
	if got := strings.Join(parts, ";"); got != economy {
		t.Errorf("economy chunks do not partition the original list: %q", got)
	}
}

func TestURLs_AllVariablesExhausted(t *testing.T) {
	bindings := map[string]string{
		"series":  strings.Repeat("S", 40),
		"economy": strings.Repeat("E", 40),
	}
	_, err := collect(t, "{series}/{economy}", []string{"series", "economy"}, bindings, 30)
	if !errors.Is(err, ErrURLTooLong) {
		t.Errorf("expected ErrURLTooLong, got %v", err)
	}
}

func TestURLs_MissingBinding(t *testing.T) {
	_, err := collect(t, "x/{v}", []string{"v"}, map[string]string{}, 50)
	if err == nil || errors.Is(err, ErrURLTooLong) {
		t.Errorf("expected a binding error, got %v", err)
	}
}

// Subdivision targets the semicolon nearest after the string midpoint.
func TestSubdivide(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "splits after midpoint",
			in:   []string{"AAAA;BBBB;CCCC"},
			want: []string{"AAAA;BBBB", "CCCC"},
		},
		{
			name: "unsplittable carried over",
			in:   []string{"AAAAAAAA"},
			want: []string{"AAAAAAAA"},
		},
		{
			name: "semicolon only before midpoint",
			in:   []string{"A;BBBBBBBBBB"},
			want: []string{"A;BBBBBBBBBB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := subdivide(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("subdivide(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("subdivide(%v)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Abandoning iteration early must not compute further chunks.
func TestURLs_Lazy(t *testing.T) {
	value := strings.Repeat("A", 20) + ";" + strings.Repeat("B", 20) + ";" + strings.Repeat("C", 20)

	count := 0
	for _, err := range URLs("x/{v}", []string{"v"}, map[string]string{"v": value}, 50) {
		if err != nil {
			t.Fatalf("URLs failed: %v", err)
		}
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected to stop after 1 url, got %d", count)
	}
}
