package usecase

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dpplink/dpplink/internal/domain"
)

// changeAttributeColumns is the fixed input shape: the first four columns of
// every row are URL, attribute id, attribute type and attribute value
const changeAttributeColumns = 4

var attributeEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// ChangelistService converts workbook rows into ChangeNode XML change lists
type ChangelistService struct {
	reader domain.TableReader
	debug  bool
}

// NewChangelistService creates a new changelist service
func NewChangelistService(reader domain.TableReader) *ChangelistService {
	return &ChangelistService{reader: reader}
}

// SetDebug enables or disables debug logging
func (s *ChangelistService) SetDebug(debug bool) {
	s.debug = debug
}

// ChangelistResult reports the outcome of converting one workbook
type ChangelistResult struct {
	InputPath  string
	OutputPath string
	Nodes      int
	Err        error
}

// ProcessDirectory converts every workbook in dir, in sorted order, writing
// an .xml file next to each input. A failing file does not stop the others.
func (s *ChangelistService) ProcessDirectory(dir string) ([]ChangelistResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	paths := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && isSpreadsheet(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	results := make([]ChangelistResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, s.ProcessFile(path))
	}

	return results, nil
}

// ProcessFile converts one workbook into its change-list XML file. The
// output path is the input path with an .xml extension. An input with no
// usable rows still produces an (empty) output file.
func (s *ChangelistService) ProcessFile(path string) ChangelistResult {
	result := ChangelistResult{
		InputPath:  path,
		OutputPath: strings.TrimSuffix(path, filepath.Ext(path)) + ".xml",
	}

	rows, err := s.reader.ReadRows(path)
	if err != nil {
		result.Err = fmt.Errorf("reading %s: %w", path, err)
		return result
	}

	content, nodes := BuildChangeList(rows)

	if err := os.WriteFile(result.OutputPath, []byte(content), 0o644); err != nil {
		result.Err = fmt.Errorf("writing %s: %w", result.OutputPath, err)
		return result
	}

	result.Nodes = nodes

	if s.debug {
		log.Printf("[CHANGELIST] %s: %d nodes -> %s", path, nodes, result.OutputPath)
	}

	return result
}

// BuildChangeList renders ChangeNode fragments for every row with all four
// values present. There is no header row; rows missing any value are
// skipped. Returns the joined document and the node count.
func BuildChangeList(rows [][]string) (string, int) {
	nodes := []string{}

	for _, row := range rows {
		values := make([]string, 0, changeAttributeColumns)
		for ix := 0; ix < changeAttributeColumns; ix++ {
			v, ok := cell(row, ix)
			if !ok {
				break
			}
			values = append(values, v)
		}

		if len(values) < changeAttributeColumns {
			continue
		}

		nodes = append(nodes, buildChangeNode(values[0], values[1], values[2], values[3]))
	}

	if len(nodes) == 0 {
		return "", 0
	}

	return strings.Join(nodes, "\n") + "\n", len(nodes)
}

// buildChangeNode renders one ChangeNode fragment. The layout (including
// the space before the closing bracket and the tab indent) is what the
// downstream consumer expects verbatim.
func buildChangeNode(url, id, typ, value string) string {
	return fmt.Sprintf("<ChangeNode URL=\"%s\" >\n\t<ChangeAttribute Id=\"%s\" Type=\"%s\" Value=\"%s\" />\n</ChangeNode>",
		attributeEscaper.Replace(url),
		attributeEscaper.Replace(id),
		attributeEscaper.Replace(typ),
		attributeEscaper.Replace(value))
}
