package loader

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/pkg/errors"
)

// ErrUnsupportedExtension is returned when a file lists an extension in extensionsRequired.
var ErrUnsupportedExtension = errors.New("required extension is not supported")

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	container *Container
	document  *gltfDocument
}

// gltfParser decodes a GLB blob into its container and JSON document and checks the parts of the
// document that apply to the file as a whole. This is internal to the loader package.
type gltfParser interface {
	// Parse reads and parses the GLB file at path.
	//
	// Parameters:
	//   - path: path to the .glb file
	//
	// Returns:
	//   - error: error if the file cannot be read or parsed
	Parse(path string) error

	// ParseReader reads a complete GLB blob from r and parses it.
	//
	// Parameters:
	//   - r: reader providing the blob
	//
	// Returns:
	//   - error: error if reading or parsing fails
	ParseReader(r io.Reader) error

	// ParseBytes parses a GLB blob held in memory. The parser keeps references into data.
	//
	// Parameters:
	//   - data: the blob
	//
	// Returns:
	//   - error: a FormatError or UnsupportedFeatureError, or ErrUnsupportedExtension
	ParseBytes(data []byte) error

	// Document returns the parsed JSON document, or nil before a successful parse.
	//
	// Returns:
	//   - *gltfDocument: the document
	Document() *gltfDocument

	// Binary returns the BIN chunk payload, nil when the blob has none.
	//
	// Returns:
	//   - []byte: the binary chunk
	Binary() []byte

	// Container returns the decoded container, or nil before a successful parse.
	//
	// Returns:
	//   - *Container: the container
	Container() *Container
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new parser.
//
// Returns:
//   - gltfParser: the parser
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	return p.ParseBytes(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "failed to read GLB stream")
	}
	return p.ParseBytes(data)
}

func (p *gltfParserImpl) ParseBytes(data []byte) error {
	container, err := DecodeContainer(data)
	if err != nil {
		return err
	}

	var doc gltfDocument
	if err := json.Unmarshal(container.JSON, &doc); err != nil {
		return common.NewFormatError("document.json", common.NoIndex, "%v", err)
	}
	if err := validateDocument(&doc, container.Binary); err != nil {
		return err
	}

	p.container = container
	p.document = &doc
	return nil
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Binary() []byte {
	if p.container == nil {
		return nil
	}
	return p.container.Binary
}

func (p *gltfParserImpl) Container() *Container {
	return p.container
}

// validateDocument checks the file-wide rules: a 2.x asset, no required extensions and a single
// buffer that is the BIN chunk.
func validateDocument(doc *gltfDocument, bin []byte) error {
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return common.NewFormatError("document.asset_version", common.NoIndex, "asset version %q, want 2.x", doc.Asset.Version)
	}
	if len(doc.ExtensionsRequired) > 0 {
		return errors.Wrapf(ErrUnsupportedExtension, "%s", strings.Join(doc.ExtensionsRequired, ", "))
	}
	if len(doc.Buffers) > 1 {
		return common.NewUnsupportedFeatureError("buffer.count", common.NoIndex, "%d buffers, only the BIN chunk is supported", len(doc.Buffers))
	}
	for i, b := range doc.Buffers {
		if b.URI != "" {
			return common.NewUnsupportedFeatureError("buffer.uri", i, "external buffer %q", b.URI)
		}
		if b.ByteLength > len(bin) {
			return common.NewFormatError("buffer.length", i, "declared %d bytes, BIN chunk has %d", b.ByteLength, len(bin))
		}
	}
	return nil
}
