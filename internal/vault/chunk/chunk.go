// Package chunk implements spec §4.E: a character-window chunker with
// overlap, merge, and keep policies, plus a fixed-layout chunker for email
// documents. Per the spec's redesign note, a document commits to exactly
// one of these strategies — see Dispatch.
package chunk

import "strings"

// Options mirrors the CHUNK_* environment knobs.
type Options struct {
	TargetChars  int
	OverlapChars int
	MinJoinChars int
	MinKeepChars int
}

// DefaultOptions returns spec's documented defaults.
func DefaultOptions() Options {
	return Options{TargetChars: 1200, OverlapChars: 150, MinJoinChars: 120, MinKeepChars: 20}
}

// Chunk is one ordered text window, ord is filled in by Dispatch/Window.
type Chunk struct {
	Ord  int
	Text string
}

// Dispatch picks the one chunker strategy for a document kind and runs it.
// kind == "email" uses the fixed-layout chunker; everything else uses the
// char-window chunker.
func Dispatch(kind, subject, body string, opt Options) []Chunk {
	if kind == "email" {
		return Email(subject, body)
	}
	return Window(body, opt)
}

// Window implements the generic char-window chunker: slide, merge, keep.
func Window(text string, opt Options) []Chunk {
	if opt.TargetChars <= 0 {
		opt.TargetChars = 1200
	}
	if opt.OverlapChars < 0 || opt.OverlapChars >= opt.TargetChars {
		opt.OverlapChars = 150
	}
	if opt.MinJoinChars <= 0 {
		opt.MinJoinChars = 120
	}
	if opt.MinKeepChars < 0 {
		opt.MinKeepChars = 20
	}

	raw := slide(text, opt.TargetChars, opt.OverlapChars)
	merged := merge(raw, opt.MinJoinChars)
	kept := keep(merged, opt.MinKeepChars)

	out := make([]Chunk, len(kept))
	for i, t := range kept {
		out[i] = Chunk{Ord: i, Text: t}
	}
	return out
}

func slide(text string, target, overlap int) []string {
	r := []rune(text)
	n := len(r)
	if n == 0 {
		return nil
	}
	step := target - overlap
	if step <= 0 {
		step = target
	}
	var out []string
	for i := 0; i < n; i += step {
		end := i + target
		if end > n {
			end = n
		}
		w := strings.TrimSpace(string(r[i:end]))
		if w != "" {
			out = append(out, w)
		}
		if end == n {
			break
		}
	}
	return out
}

// merge folds any chunk shorter than minJoin into a running buffer; when a
// long chunk arrives the buffer is flushed, joined onto the long chunk if
// the buffer itself is small, or emitted as a separate preceding chunk.
func merge(chunks []string, minJoin int) []string {
	var out []string
	var buf string
	for _, c := range chunks {
		if len([]rune(c)) < minJoin {
			if buf == "" {
				buf = c
			} else {
				buf = buf + " " + c
			}
			continue
		}
		if buf != "" {
			if len([]rune(buf)) < minJoin {
				out = append(out, strings.TrimSpace(buf+" "+c))
			} else {
				out = append(out, buf, c)
			}
			buf = ""
			continue
		}
		out = append(out, c)
	}
	if buf != "" {
		out = append(out, buf)
	}
	return out
}

func keep(chunks []string, minKeep int) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if len([]rune(c)) >= minKeep {
			out = append(out, c)
		}
	}
	return out
}

// Email implements the fixed-layout chunker: subject, first 1000 chars of
// body, then 1200-char windows with 160-char overlap.
func Email(subject, body string) []Chunk {
	var out []Chunk
	ord := 0

	subj := strings.TrimSpace(subject)
	if len(subj) > 300 {
		subj = string([]rune(subj)[:300])
	}
	if subj != "" {
		out = append(out, Chunk{Ord: ord, Text: subj})
		ord++
	}

	r := []rune(strings.TrimSpace(body))
	if len(r) > 0 {
		head := r
		if len(head) > 1000 {
			head = head[:1000]
		}
		out = append(out, Chunk{Ord: ord, Text: string(head)})
		ord++

		rest := r
		if len(r) > 1000 {
			rest = r[1000:]
		} else {
			rest = nil
		}
		for _, c := range slide(string(rest), 1200, 160) {
			out = append(out, Chunk{Ord: ord, Text: c})
			ord++
		}
	}
	return out
}
