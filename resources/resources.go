// Copyright © 2024 The ELPS authors

// Package resources loads the static data describing the names built into
// the AutoLISP runtime: the documentation dataset and the built-in keyword
// list.  Both are embedded in the binary and may be overridden by files.
package resources

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

const (
	keywordsFile = "data/alllispkeys.txt"
	datasetFile  = "data/webHelpAbstraction.json"
)

//go:embed data/alllispkeys.txt data/webHelpAbstraction.json
var embedded embed.FS

var log = commonlog.GetLogger("alisp.resources")

// Source names override files for the embedded resources.  An empty path
// selects the embedded copy.
type Source struct {
	KeywordsPath string
	DatasetPath  string
}

// Resources is the loaded resource data.  Either field may be empty when
// loading failed.
type Resources struct {
	Keywords []string
	Dataset  *Dataset
}

// Load reads the resources named by src.  Load never fails; a resource that
// cannot be read or decoded is logged and left empty so that callers degrade
// instead of aborting.
func Load(src Source) *Resources {
	res := &Resources{}
	kw, err := readKeywords(src.KeywordsPath)
	if err != nil {
		log.Warningf("built-in keyword list unavailable: %v", err)
	} else {
		res.Keywords = kw
	}
	ds, err := readDataset(src.DatasetPath)
	if err != nil {
		log.Warningf("documentation dataset unavailable: %v", err)
	} else {
		res.Dataset = ds
	}
	log.Debugf("loaded %d keywords and %d dataset names", len(res.Keywords), len(res.Dataset.Names()))
	return res
}

var defaultSource atomic.Pointer[Source]

// SetDefaultSource changes the source used by Default.  It affects only
// loads that happen after the call.
func SetDefaultSource(src Source) {
	defaultSource.Store(&src)
}

// Default loads the resources from the configured default source.
func Default() *Resources {
	src := defaultSource.Load()
	if src == nil {
		return Load(Source{})
	}
	return Load(*src)
}

// Names returns every classifier name contributed by r.  Duplicates are
// possible.
func (r *Resources) Names() []string {
	names := r.Dataset.Names()
	return append(names, r.Keywords...)
}

func open(path, embeddedName string) (io.ReadCloser, error) {
	if path == "" {
		return embedded.Open(embeddedName)
	}
	return os.Open(path) //#nosec G304
}

func readKeywords(path string) ([]string, error) {
	f, err := open(path, keywordsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return ParseKeywords(f)
}

func readDataset(path string) (*Dataset, error) {
	f, err := open(path, datasetFile)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return ParseDataset(f)
}

// ParseKeywords reads a newline delimited keyword list.  Lines may end with
// either LF or CRLF.  Blank lines are ignored.
func ParseKeywords(r io.Reader) ([]string, error) {
	var kw []string
	s := bufio.NewScanner(r)
	s.Split(scanLines)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		kw = append(kw, line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}
	return kw, nil
}

// scanLines is bufio.ScanLines that also accepts a lone CR as a line break
// so that a file converted on a classic Mac platform still splits.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		adv := i + 1
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					adv++
				}
			} else if !atEOF {
				return 0, nil, nil
			}
		}
		return adv, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
