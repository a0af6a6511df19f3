package train

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessageShort(t *testing.T) {
	chunks := splitMessage("короткий ответ", 2000)
	if len(chunks) != 1 || chunks[0] != "короткий ответ" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestSplitMessagePrefersLineBreaks(t *testing.T) {
	msg := strings.Repeat("строка\n", 40)
	chunks := splitMessage(msg, 100)
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d is %d bytes, over the limit", i, len(c))
		}
		if strings.HasPrefix(c, "\n") || strings.HasSuffix(c, "\n") {
			t.Errorf("chunk %d not trimmed: %q", i, c)
		}
	}
	if got := strings.Join(chunks, "\n"); strings.Count(got, "строка") != 40 {
		t.Errorf("content lost while splitting: %d lines", strings.Count(got, "строка"))
	}
}

func TestSplitMessageHardCut(t *testing.T) {
	msg := strings.Repeat("a", 250)
	chunks := splitMessage(msg, 100)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[2]) != 50 {
		t.Errorf("chunk sizes: %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplitMessageEmpty(t *testing.T) {
	if chunks := splitMessage("", 2000); len(chunks) != 0 {
		t.Errorf("empty input produced %v", chunks)
	}
}

func TestSplitMessageHardCutKeepsRunesIntact(t *testing.T) {
	// Cyrillic runes are 2 bytes; an odd limit lands mid-rune.
	msg := strings.Repeat("я", 150)
	chunks := splitMessage(msg, 101)
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, c)
		}
		if len(c) > 101 {
			t.Errorf("chunk %d is %d bytes, over the limit", i, len(c))
		}
	}
	if got := strings.Join(chunks, ""); utf8.RuneCountInString(got) != 150 {
		t.Errorf("runes lost: %d", utf8.RuneCountInString(got))
	}
}

func TestTrimForEmbedKeepsRunesIntact(t *testing.T) {
	s := strings.Repeat("ё", 60)
	got := trimForEmbed(s, 101)
	if !utf8.ValidString(got) {
		t.Errorf("not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
	if got := trimForEmbed("короткий", 100); got != "короткий" {
		t.Errorf("short input changed: %q", got)
	}
}

func TestTruncateLogKeepsRunesIntact(t *testing.T) {
	got := truncateLog(strings.Repeat("ж", 100), 121)
	if !utf8.ValidString(got) {
		t.Errorf("not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
}

func TestTruncateLog(t *testing.T) {
	if got := truncateLog("  привет  ", 120); got != "привет" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("x", 200)
	got := truncateLog(long, 120)
	if !strings.HasSuffix(got, "...") || len(got) != 123 {
		t.Errorf("truncated form = %q (%d bytes)", got, len(got))
	}
}
