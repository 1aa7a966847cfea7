package engine

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// charsetReader adapts etree's ReadSettings.CharsetReader hook to prefer
// UTF-8 when a document's declared encoding disagrees with its actual
// content — grounded on the teacher's content.Prepare, which needed this
// for FB2 files that declare "windows-1251" but are plain UTF-8 in
// practice. Real-world EPUB package/NCX documents are just as often
// mislabeled, so the same leniency applies here.
func charsetReader(log *zap.Logger) func(string, io.Reader) (io.Reader, error) {
	return func(label string, input io.Reader) (io.Reader, error) {
		const peekSize = 2048
		buf, err := io.ReadAll(io.LimitReader(input, peekSize))
		if err != nil {
			return nil, fmt.Errorf("engine: peek at XML content: %w", err)
		}
		restored := io.MultiReader(bytes.NewReader(buf), input)

		check := trimIncompleteUTF8(buf)
		if utf8.Valid(check) && containsNonASCII(check) {
			log.Warn("XML declares non-UTF-8 encoding but content is valid UTF-8, ignoring declared encoding")
			return restored, nil
		}
		return charset.NewReaderLabel(label, restored)
	}
}

func trimIncompleteUTF8(buf []byte) []byte {
	if len(buf) == 0 || buf[len(buf)-1] < 0x80 {
		return buf
	}
	for i := 1; i <= 3 && i <= len(buf); i++ {
		b := buf[len(buf)-i]
		if b >= 0xC0 {
			if utf8.RuneLen(rune(b)) > i {
				return buf[:len(buf)-i]
			}
			return buf
		}
	}
	return buf
}

func containsNonASCII(buf []byte) bool {
	for _, b := range buf {
		if b >= 0x80 {
			return true
		}
	}
	return false
}
