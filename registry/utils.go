package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"

	"github.com/lumera-tools/protolite/schema"
)

// loader parses .proto files and, depth first, the files they import.
type loader struct {
	roots   []string
	visited map[string]struct{} // absolute paths, to make sure we don't end up in a loop
	files   []*parsedFile
}

func newLoader(roots []string) *loader {
	return &loader{
		roots:   roots,
		visited: make(map[string]struct{}),
	}
}

// load uses DFS to parse protoFile and everything it imports
func (l *loader) load(protoFile string) error {
	abs, err := filepath.Abs(protoFile)
	if err != nil {
		return err
	}
	if _, ok := l.visited[abs]; ok {
		return nil
	}
	l.visited[abs] = struct{}{}

	protoBytes, err := os.ReadFile(protoFile)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	parsedBody, err := protoparser.Parse(bytes.NewBuffer(protoBytes))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", protoFile, err)
	}

	pf, err := convertProto(l.fileName(abs), parsedBody)
	if err != nil {
		return err
	}

	// resolve relation for each import
	for _, importPath := range pf.file.Imports {
		// well-known types are not bundled
		if strings.HasPrefix(importPath, "google/protobuf/") {
			continue
		}
		fullImportPath, err := l.findIfProtoExists(importPath)
		if err != nil {
			return fmt.Errorf("%s: %w", pf.file.Name, err)
		}
		if err := l.load(fullImportPath); err != nil {
			return err
		}
	}

	l.files = append(l.files, pf)
	return nil
}

// fileName names a file by its path below the first import root holding it,
// which is how other files import it.
func (l *loader) fileName(abs string) string {
	for _, root := range l.roots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(abs)
}

func (l *loader) findIfProtoExists(protoPath string) (string, error) {
	protoPath = strings.Trim(protoPath, `"`)
	if !strings.HasSuffix(protoPath, ".proto") {
		return "", fmt.Errorf("is not a .proto file: %s", protoPath)
	}
	for _, dir := range l.roots {
		fullPath := filepath.Join(dir, filepath.FromSlash(protoPath))
		// Check if the path exists
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("import %s not found in %v", protoPath, l.roots)
}

// resolveReferences binds the named types of a batch of parsed files to fully
// qualified enum or message names, then converts declared defaults. Names
// resolve against the batch and everything already registered. The caller
// holds the write lock.
func (r *Registry) resolveReferences(batch []*parsedFile) error {
	kinds := make(map[string]schema.Kind)
	enums := make(map[string]*schema.Enum)
	for name := range r.messages {
		kinds[name] = schema.KindMessage
	}
	for name, enum := range r.enums {
		kinds[name] = schema.KindEnum
		enums[name] = enum
	}
	for _, pf := range batch {
		collectNames(pf.file.Messages, pf.file.Enums, kinds, enums)
	}

	for _, pf := range batch {
		for _, ref := range pf.refs {
			fullName, err := getReferencedType(ref.typeName, ref.scope, kinds)
			if err != nil {
				return fmt.Errorf("%s: %s.%s: %w", pf.file.Name, ref.scope, ref.field.Name, err)
			}
			ref.field.Kind = kinds[fullName]
			ref.field.TypeName = fullName
		}
		for _, d := range pf.defaults {
			v, err := parseDefault(d.field, d.constant, enums)
			if err != nil {
				return fmt.Errorf("%s: %s.%s: %w", pf.file.Name, d.scope, d.field.Name, err)
			}
			d.field.Default = v
		}
	}
	return nil
}

func collectNames(messages []*schema.Message, enumDefs []*schema.Enum, kinds map[string]schema.Kind, enums map[string]*schema.Enum) {
	for _, enum := range enumDefs {
		kinds[enum.Name] = schema.KindEnum
		enums[enum.Name] = enum
	}
	for _, msg := range messages {
		kinds[msg.Name] = schema.KindMessage
		collectNames(msg.NestedTypes, msg.NestedEnums, kinds, enums)
	}
}

/*
This helper function will return the entity for any referenced type ,
Be it top/file,nested or imported entities.If not found will return an error
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func getReferencedType(typeName, prefix string, allResolvedEntities map[string]schema.Kind) (string, error) {
	// check if fully qualifed prefixed by dot
	if strings.HasPrefix(typeName, ".") {
		return getFullyQualifiedType(typeName, allResolvedEntities)
	}
	// try resolving from inner entities up till the parent package
	if result, ok := splitNameAndCheck(typeName, prefix, allResolvedEntities); ok {
		return result, nil
	}
	//  check if the entity is referenced to other packages via packageName
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

// splitNameAndCheck splits the prefixName and tries to append the typeName and find the entity for resolution
// it also tries the find the entities defined using relative path
func splitNameAndCheck(typeName, prefix string, allResolvedEntities map[string]schema.Kind) (string, bool) {
	prefixSplit := strings.Split(prefix, ".")

	for len(prefixSplit) > 0 && prefixSplit[0] != "" {
		entityName := strings.Join(prefixSplit, ".") + "." + typeName
		if _, ok := allResolvedEntities[entityName]; ok {
			return entityName, true
		}
		// Omit the last element in each iteration as we go level above to outer entity
		prefixSplit = prefixSplit[:len(prefixSplit)-1]
	}
	return "", false
}

func getFullyQualifiedType(typeName string, allResolvedEntities map[string]schema.Kind) (string, error) {
	typeName = strings.TrimPrefix(typeName, ".")
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve fully qualified type name: .%s", typeName)
}
