package verify

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

func fileSHA1(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha1.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

func bytesSHA1(data []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(data))
}
