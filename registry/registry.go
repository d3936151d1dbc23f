package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lumera-tools/protolite/schema"
)

// Registry allows us to store the schema of the protobuf messages. We look this up when we need to parse or marshal a message.
// It is safe for concurrent use; descriptors handed out are linked and must
// not be modified.
type Registry struct {
	// ProtoDirectories are the roots import paths are resolved against.
	ProtoDirectories []string

	mu       sync.RWMutex
	files    map[string]*schema.File    // file name -> file
	messages map[string]*schema.Message // fully qualified name -> message
	enums    map[string]*schema.Enum    // fully qualified name -> enum
}

// NewRegistry creates an empty registry resolving imports against protoDirectories.
func NewRegistry(protoDirectories ...string) *Registry {
	return &Registry{
		ProtoDirectories: protoDirectories,
		files:            make(map[string]*schema.File),
		messages:         make(map[string]*schema.Message),
		enums:            make(map[string]*schema.Enum),
	}
}

// Register adds descriptor files declared in Go. Every message and enum,
// nested ones included, must carry its fully qualified name; references are
// resolved against the files given and everything registered before.
// Nothing is registered when an error is returned.
func (r *Registry) Register(files ...*schema.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(files)
}

// register links files against the current contents and commits them. The
// caller holds the write lock.
func (r *Registry) register(files []*schema.File) error {
	// Initialize the registry maps if not already done
	if r.files == nil {
		r.files = make(map[string]*schema.File)
		r.messages = make(map[string]*schema.Message)
		r.enums = make(map[string]*schema.Enum)
	}

	st := &stage{
		base:     r,
		messages: make(map[string]*schema.Message),
		enums:    make(map[string]*schema.Enum),
	}
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		_, exists := r.files[file.Name]
		if _, dup := seen[file.Name]; exists || dup {
			return fmt.Errorf("file %s already registered", file.Name)
		}
		seen[file.Name] = struct{}{}
		for _, enum := range file.Enums {
			if err := st.addEnum(enum); err != nil {
				return err
			}
		}
		for _, msg := range file.Messages {
			if err := st.addMessage(msg); err != nil {
				return err
			}
		}
	}

	// enums first: message links check enum defaults
	for _, name := range sortedKeys(st.enums) {
		if err := st.enums[name].Link(); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(st.messages) {
		if err := st.messages[name].Link(st); err != nil {
			return err
		}
	}

	for _, file := range files {
		r.files[file.Name] = file
	}
	for name, msg := range st.messages {
		r.messages[name] = msg
	}
	for name, enum := range st.enums {
		r.enums[name] = enum
	}
	return nil
}

// stage holds descriptors being registered, on top of the registry contents.
type stage struct {
	base     *Registry
	messages map[string]*schema.Message
	enums    map[string]*schema.Enum
}

func (s *stage) addMessage(msg *schema.Message) error {
	if s.hasName(msg.Name) {
		return fmt.Errorf("%w: duplicate definition of %s", schema.ErrInvalidSchema, msg.Name)
	}
	s.messages[msg.Name] = msg

	// Register nested types
	for _, nested := range msg.NestedTypes {
		if err := s.addMessage(nested); err != nil {
			return err
		}
	}
	for _, nested := range msg.NestedEnums {
		if err := s.addEnum(nested); err != nil {
			return err
		}
	}
	return nil
}

func (s *stage) addEnum(enum *schema.Enum) error {
	if s.hasName(enum.Name) {
		return fmt.Errorf("%w: duplicate definition of %s", schema.ErrInvalidSchema, enum.Name)
	}
	s.enums[enum.Name] = enum
	return nil
}

func (s *stage) hasName(name string) bool {
	_, m := s.messages[name]
	_, e := s.enums[name]
	_, bm := s.base.messages[name]
	_, be := s.base.enums[name]
	return m || e || bm || be
}

// GetMessage resolves exact names only, references are fully qualified by now.
func (s *stage) GetMessage(name string) (*schema.Message, error) {
	if msg, ok := s.messages[name]; ok {
		return msg, nil
	}
	if msg, ok := s.base.messages[name]; ok {
		return msg, nil
	}
	return nil, fmt.Errorf("message not found: %s", name)
}

func (s *stage) GetEnum(name string) (*schema.Enum, error) {
	if enum, ok := s.enums[name]; ok {
		return enum, nil
	}
	if enum, ok := s.base.enums[name]; ok {
		return enum, nil
	}
	return nil, fmt.Errorf("enum not found: %s", name)
}

// LoadSchema Given a path it will recursively scan all *proto files inside it
// and register them along with their imports. A directory is also used as an
// import root. Files already registered under the same name are skipped.
func (r *Registry) LoadSchema(protoPath string) error {
	// Check if the path exists
	info, err := os.Stat(protoPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	var paths []string
	roots := r.ProtoDirectories
	if !info.IsDir() {
		if !strings.HasSuffix(protoPath, ".proto") {
			return fmt.Errorf("file %s is not a .proto file", protoPath)
		}
		paths = append(paths, protoPath)
	} else {
		roots = append([]string{protoPath}, roots...)
		err = filepath.WalkDir(protoPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			// Skip directories and non-proto files
			if d.IsDir() || !strings.HasSuffix(path, ".proto") {
				return nil
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to walk directory: %w", err)
		}
	}

	loader := newLoader(roots)
	for _, path := range paths {
		if err := loader.load(path); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var batch []*parsedFile
	for _, pf := range loader.files {
		if _, exists := r.files[pf.file.Name]; !exists {
			batch = append(batch, pf)
		}
	}
	if err := r.resolveReferences(batch); err != nil {
		return err
	}

	files := make([]*schema.File, 0, len(batch))
	for _, pf := range batch {
		files = append(files, pf.file)
	}
	return r.register(files)
}

// GetMessage retrieves a message definition by name. Names without their
// package are accepted when they match exactly one registered message.
func (r *Registry) GetMessage(name string) (*schema.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if msg, exists := r.messages[name]; exists {
		return msg, nil
	}
	full, err := matchSuffix(name, r.messages)
	if err != nil {
		return nil, fmt.Errorf("message %w", err)
	}
	return r.messages[full], nil
}

// GetEnum retrieves an enum definition by name, like GetMessage.
func (r *Registry) GetEnum(name string) (*schema.Enum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if enum, exists := r.enums[name]; exists {
		return enum, nil
	}
	full, err := matchSuffix(name, r.enums)
	if err != nil {
		return nil, fmt.Errorf("enum %w", err)
	}
	return r.enums[full], nil
}

// ListMessages returns all registered message names, sorted
func (r *Registry) ListMessages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.messages)
}

// ListEnums returns all registered enum names, sorted
func (r *Registry) ListEnums() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.enums)
}

// ListFiles returns the names of all registered files, sorted
func (r *Registry) ListFiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.files)
}

// matchSuffix finds the single key of m ending in "."+name.
func matchSuffix[V any](name string, m map[string]V) (string, error) {
	var matches []string
	for fullName := range m {
		if strings.HasSuffix(fullName, "."+name) {
			matches = append(matches, fullName)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("name %s is ambiguous: %s", name, strings.Join(matches, ", "))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
