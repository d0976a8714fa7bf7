package loader

import (
	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/pkg/errors"
)

// gltfBufferExtractorImpl is the implementation of the gltfBufferExtractor interface.
type gltfBufferExtractorImpl struct {
	parser    gltfParser
	views     []*model.BufferView
	accessors map[int]*model.Accessor
}

// gltfBufferExtractor turns the bufferViews and accessors of a parsed document into model objects.
// Views are created up front; accessors are created on first reference and shared afterwards.
type gltfBufferExtractor interface {
	// ExtractBufferViews creates one view per bufferViews[] entry over the BIN chunk.
	//
	// Returns:
	//   - []*model.BufferView: the views, indexed as in the document
	//   - error: a ReferenceError or FormatError for an invalid view
	ExtractBufferViews() ([]*model.BufferView, error)

	// BufferView returns the view at index.
	//
	// Parameters:
	//   - index: the view index, already range checked by the caller
	//
	// Returns:
	//   - *model.BufferView: the view
	BufferView(index int) *model.BufferView

	// Accessor returns the accessor at index, creating it on first use.
	//
	// Parameters:
	//   - index: the accessor index, already range checked by the caller
	//
	// Returns:
	//   - *model.Accessor: the accessor
	//   - error: a ReferenceError or FormatError for an invalid accessor
	Accessor(index int) (*model.Accessor, error)
}

var _ gltfBufferExtractor = &gltfBufferExtractorImpl{}

// newGLTFBufferExtractor creates a new buffer extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfBufferExtractor: the buffer extractor
func newGLTFBufferExtractor(parser gltfParser) gltfBufferExtractor {
	return &gltfBufferExtractorImpl{
		parser:    parser,
		accessors: make(map[int]*model.Accessor),
	}
}

func (e *gltfBufferExtractorImpl) ExtractBufferViews() ([]*model.BufferView, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("no document loaded")
	}

	bin := e.parser.Binary()
	views := make([]*model.BufferView, len(doc.BufferViews))
	for i, bv := range doc.BufferViews {
		desc := model.BufferViewDescriptor{
			Buffer:     bv.Buffer,
			ByteOffset: bv.ByteOffset,
			ByteLength: bv.ByteLength,
		}
		if bv.ByteStride != nil {
			desc.ByteStride = *bv.ByteStride
		}

		v, err := model.NewBufferView(i, bin, desc)
		if err != nil {
			return nil, err
		}
		views[i] = v
	}

	e.views = views
	return views, nil
}

func (e *gltfBufferExtractorImpl) BufferView(index int) *model.BufferView {
	return e.views[index]
}

func (e *gltfBufferExtractorImpl) Accessor(index int) (*model.Accessor, error) {
	if a, ok := e.accessors[index]; ok {
		return a, nil
	}

	acc := &e.parser.Document().Accessors[index]
	if acc.BufferView == nil {
		return nil, common.NewUnsupportedFeatureError("accessor.buffer_view", index, "accessor without a buffer view")
	}
	if err := common.CheckIndex("accessor.buffer_view", index, *acc.BufferView, len(e.views)); err != nil {
		return nil, err
	}

	a, err := model.NewAccessor(index, e.views[*acc.BufferView], model.AccessorDescriptor{
		Count:         acc.Count,
		ComponentType: model.ComponentType(acc.ComponentType),
		Type:          model.AccessorType(acc.Type),
		ByteOffset:    acc.ByteOffset,
	})
	if err != nil {
		return nil, err
	}
	e.accessors[index] = a
	return a, nil
}
