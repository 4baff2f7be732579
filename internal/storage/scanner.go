package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"
)

// ErrMaliciousFile is returned when the antivirus daemon flags an upload.
var ErrMaliciousFile = errors.New("malicious file detected")

// ClamAVScanner streams upload content through a clamd daemon before it is
// allowed into the bucket.
type ClamAVScanner struct {
	addr string
}

func NewClamAVScanner(addr string) *ClamAVScanner {
	return &ClamAVScanner{addr: addr}
}

// Scan runs the reader through clamd. A non-OK verdict is ErrMaliciousFile;
// any other error means the scan itself could not complete.
func (s *ClamAVScanner) Scan(reader io.Reader) error {
	client := clamd.NewClamd(s.addr)

	abort := make(chan bool)
	defer close(abort)

	results, err := client.ScanStream(reader, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}
	for result := range results {
		if result.Status != clamd.RES_OK {
			return ErrMaliciousFile
		}
	}
	return nil
}
