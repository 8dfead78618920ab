package highlight

// Span is a maximal run of text sharing one effective category.
type Span struct {
	Text     string
	Category Category
}

// Spans flattens possibly overlapping ranges into consecutive spans covering
// all of text. Where ranges overlap, the later one in ranges wins.
func Spans(text string, ranges []Range) []Span {
	if text == "" {
		return nil
	}

	cats := make([]Category, len(text))
	for _, r := range ranges {
		start, end := max(r.Start, 0), min(r.End, len(text))
		for i := start; i < end; i++ {
			cats[i] = r.Category
		}
	}

	var spans []Span
	start := 0
	for i := 1; i <= len(text); i++ {
		if i < len(text) && cats[i] == cats[start] {
			continue
		}
		spans = append(spans, Span{Text: text[start:i], Category: cats[start]})
		start = i
	}
	return spans
}
