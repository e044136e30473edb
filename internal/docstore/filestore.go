package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vk/rockiq/internal/ctxlog"
	"github.com/vk/rockiq/internal/record"
)

// SectionName identifies the YAML document that carries the sequences.
const SectionName = "SequenceConfig"

// FileStore persists sequences in a multi-document YAML file. The document
// whose top-level "section" equals SectionName holds a "sequences" list of
// {id, name, module_sequence} entries.
//
// Every operation re-reads the whole file and persist rewrites it whole.
// Documents other than the sequence section, and sequence fields other than
// module_sequence, are carried through untouched as retained node trees.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the YAML file at path. The file is
// not opened until the first operation.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// parsed holds the full document set plus a cursor into the sequences list.
type parsed struct {
	docs    []*yaml.Node // every document node, in file order
	seqList *yaml.Node   // the "sequences" sequence node
}

func (s *FileStore) parse() (*parsed, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", s.path, err)
	}

	var docs []*yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parsing document %s: %w", s.path, err)
		}
		docs = append(docs, &node)
	}

	for _, doc := range docs {
		root := documentRoot(doc)
		section := mapValue(root, "section")
		if section == nil || section.Value != SectionName {
			continue
		}
		seqList := mapValue(root, "sequences")
		if seqList == nil || seqList.Kind != yaml.SequenceNode || len(seqList.Content) == 0 {
			return nil, fmt.Errorf("no sequences found in %s section", SectionName)
		}
		return &parsed{docs: docs, seqList: seqList}, nil
	}
	return nil, fmt.Errorf("section %q not found in %s", SectionName, s.path)
}

// ListSequences implements Store.
func (s *FileStore) ListSequences(ctx context.Context) ([]record.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.parse()
	if err != nil {
		return nil, err
	}
	infos := make([]record.Info, 0, len(p.seqList.Content))
	for _, item := range p.seqList.Content {
		infos = append(infos, record.Info{ID: sequenceID(item), Name: sequenceName(item)})
	}
	ctxlog.FromContext(ctx).Debug("Listed sequences.", "path", s.path, "count", len(infos))
	return infos, nil
}

// LoadSequence implements Store.
func (s *FileStore) LoadSequence(ctx context.Context, id int) (*record.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.parse()
	if err != nil {
		return nil, err
	}
	item := findSequence(p, id)
	if item == nil {
		return nil, fmt.Errorf("sequence %d in %s: %w", id, s.path, ErrSequenceNotFound)
	}

	seq := &record.Sequence{ID: id, Name: sequenceName(item), Records: []*record.Record{}}
	msNode := mapValue(item, "module_sequence")
	if msNode == nil {
		// A sequence without records is legal; it compiles to an empty graph.
		return seq, nil
	}
	if msNode.Kind != yaml.SequenceNode {
		return nil, &ShapeError{SequenceID: id, Detail: "module_sequence is not a list"}
	}
	for i, recNode := range msNode.Content {
		rec := record.New()
		if err := recNode.Decode(rec); err != nil {
			return nil, &ShapeError{SequenceID: id, Detail: fmt.Sprintf("record %d: %v", i, err)}
		}
		seq.Records = append(seq.Records, rec)
	}
	ctxlog.FromContext(ctx).Debug("Loaded sequence.", "id", id, "records", len(seq.Records))
	return seq, nil
}

// PersistSequence implements Store. Only the target sequence's record list
// is rebuilt; everything else in the file is re-emitted from the retained
// node trees.
func (s *FileStore) PersistSequence(ctx context.Context, seq *record.Sequence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.parse()
	if err != nil {
		return err
	}
	item := findSequence(p, seq.ID)
	if item == nil {
		return fmt.Errorf("sequence %d in %s: %w", seq.ID, s.path, ErrSequenceNotFound)
	}

	listNode := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, rec := range seq.Records {
		recNode, err := rec.YAMLNode()
		if err != nil {
			return fmt.Errorf("encoding record for sequence %d: %w", seq.ID, err)
		}
		listNode.Content = append(listNode.Content, recNode)
	}
	setMapValue(item, "module_sequence", listNode)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, doc := range p.docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding document %s: %w", s.path, err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding document %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", s.path, err)
	}
	ctxlog.FromContext(ctx).Debug("Persisted sequence.", "id", seq.ID, "records", len(seq.Records))
	return nil
}

// documentRoot unwraps a document node to its single content node.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		return doc.Content[0]
	}
	return doc
}

// mapValue returns the value node for key inside a mapping node, or nil.
func mapValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// setMapValue replaces the value node for key, appending the pair if absent.
func setMapValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func findSequence(p *parsed, id int) *yaml.Node {
	want := strconv.Itoa(id)
	for _, item := range p.seqList.Content {
		sid := "0"
		if idNode := mapValue(item, "id"); idNode != nil && idNode.Kind == yaml.ScalarNode {
			sid = idNode.Value
		}
		if sid == want {
			return item
		}
	}
	return nil
}

func sequenceID(item *yaml.Node) int {
	idNode := mapValue(item, "id")
	if idNode == nil || idNode.Kind != yaml.ScalarNode {
		return 0
	}
	id, err := strconv.Atoi(idNode.Value)
	if err != nil {
		return 0
	}
	return id
}

func sequenceName(item *yaml.Node) string {
	nameNode := mapValue(item, "name")
	if nameNode == nil || nameNode.Kind != yaml.ScalarNode {
		return ""
	}
	return nameNode.Value
}
