package util

import (
	"bufio"
	"strings"
)

// ReadLine reads one full line without the trailing newline, however long it is.
func ReadLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", err
		}
		sb.Write(chunk)
		if !isPrefix {
			break
		}
	}
	return sb.String(), nil
}
