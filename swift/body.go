package swift

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kbukum/swiftkit/errors"
)

// replayableBody is a request body that can be sent again after a 401.
// In-memory bodies are re-read from the start; a seeker is rewound to the
// offset it had when the request began.
type replayableBody struct {
	data   []byte
	seeker io.ReadSeeker
	offset int64
}

func newReplayableBody(body any) (*replayableBody, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return &replayableBody{data: b}, nil
	case string:
		return &replayableBody{data: []byte(b)}, nil
	case io.ReadSeeker:
		offset, err := b.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, errors.UnseekableBody(fmt.Sprintf("%T", b)).WithCause(err)
		}
		return &replayableBody{seeker: b, offset: offset}, nil
	case io.Reader:
		return nil, errors.UnseekableBody(fmt.Sprintf("%T", b))
	default:
		return nil, errors.Option("unsupported body type %T", body)
	}
}

// reader returns the body positioned at its start.
func (b *replayableBody) reader() (io.Reader, error) {
	if b == nil {
		return nil, nil
	}
	if b.seeker == nil {
		return bytes.NewReader(b.data), nil
	}
	if _, err := b.seeker.Seek(b.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	return b.seeker, nil
}
