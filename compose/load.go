package compose

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/digitorus/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrCorruptDocument is returned when the input cannot be parsed as a PDF.
	ErrCorruptDocument = errors.New("corrupt or unparseable PDF")
	// ErrPasswordRequired is returned for documents encrypted with a user password.
	ErrPasswordRequired = errors.New("PDF requires a password")
)

// LoadOptions controls how a source document is opened.
type LoadOptions struct {
	// Repair rewrites unparseable input with pdfcpu once before giving up.
	Repair bool
}

// Source is a parsed input document.
type Source struct {
	// Data is the byte stream updates are appended to. It differs from the
	// caller's input only when the input had to be decrypted or repaired.
	Data   []byte
	Reader *pdf.Reader

	Decrypted bool
	Repaired  bool
}

var disableConfigDir sync.Once

func pdfcpuConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// Load parses data. Documents protected only by an owner password are
// decrypted so the update can be written in the clear; documents that need
// a user password fail with ErrPasswordRequired.
func Load(data []byte, opts LoadOptions) (*Source, error) {
	rdr, err := parse(data)
	switch {
	case errors.Is(err, pdf.ErrInvalidPassword):
		return nil, ErrPasswordRequired

	case err == nil && rdr.Trailer().Key("Encrypt").IsNull():
		return &Source{Data: data, Reader: rdr}, nil

	case err == nil:
		src, derr := decrypt(data)
		if derr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPasswordRequired, derr)
		}
		return src, nil

	case bytes.Contains(data, []byte("/Encrypt")):
		// The reader gives up on some encryption dictionaries that pdfcpu
		// still handles. Anything other than a password failure is treated
		// as corruption below.
		src, derr := decrypt(data)
		if derr == nil {
			return src, nil
		}
		if errors.Is(derr, pdfcpu.ErrWrongPassword) {
			return nil, fmt.Errorf("%w: %v", ErrPasswordRequired, derr)
		}
	}

	if !opts.Repair {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	src, rerr := repair(data)
	if rerr != nil {
		return nil, fmt.Errorf("%w: %v (repair failed: %v)", ErrCorruptDocument, err, rerr)
	}
	return src, nil
}

// parse opens data with the pdf reader. The reader reports some syntax
// errors by panicking, which is turned into an error here.
func parse(data []byte) (rdr *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			rdr, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	if len(data) == 0 {
		return nil, errors.New("empty input")
	}

	rdr, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	if rdr.NumPage() < 1 {
		return nil, errors.New("document has no pages")
	}
	return rdr, nil
}

func decrypt(data []byte) (*Source, error) {
	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, pdfcpuConfig()); err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	rdr, err := parse(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse decrypted document: %w", err)
	}
	return &Source{Data: out.Bytes(), Reader: rdr, Decrypted: true}, nil
}

func repair(data []byte) (*Source, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, pdfcpuConfig()); err != nil {
		return nil, fmt.Errorf("failed to rewrite document: %w", err)
	}

	rdr, err := parse(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse repaired document: %w", err)
	}
	return &Source{Data: out.Bytes(), Reader: rdr, Repaired: true}, nil
}
