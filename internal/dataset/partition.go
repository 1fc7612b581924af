package dataset

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kirjasto-labs/metacorpus/internal/common"
)

// handleAnchor is the stable path segment identifiers are normalized from.
const handleAnchor = "handle"

// NormalizeIdentifier reduces a canonical document URI to the short form the
// test-id set is built from: everything from the handle segment onward, with
// path separators replaced by underscores. The second return is false when
// the identifier carries no handle segment.
func NormalizeIdentifier(identifier string) (string, bool) {
	id := strings.TrimSpace(identifier)
	if i := strings.Index(id, "://"); i >= 0 {
		id = id[i+3:]
	}
	id = strings.Trim(id, "/")

	segments := strings.Split(id, "/")
	for i, seg := range segments {
		if seg == handleAnchor {
			return strings.Join(segments[i:], "_"), true
		}
	}
	return "", false
}

// Partitioner deterministically routes documents into train or test. It is a
// pure function of the identifier and the fixed test-id set; re-running over
// the same catalog always reproduces the same split.
type Partitioner struct {
	testIDs map[string]struct{}
	strict  bool
	logger  *slog.Logger
}

func NewPartitioner(testIDs []string, strict bool, logger *slog.Logger) *Partitioner {
	if logger == nil {
		logger = slog.Default()
	}
	set := make(map[string]struct{}, len(testIDs))
	for _, id := range testIDs {
		set[id] = struct{}{}
	}
	return &Partitioner{testIDs: set, strict: strict, logger: logger}
}

// IsTest reports whether the identifier belongs to the test split. Membership
// is exact-match and case-sensitive. An identifier that does not normalize
// falls through to train unless strict mode is on; either way it is logged,
// since a silently empty test set usually means a misconfigured id list.
func (p *Partitioner) IsTest(identifier string) (bool, error) {
	norm, ok := NormalizeIdentifier(identifier)
	if !ok {
		if p.strict {
			return false, common.NewAppError("PARTITION_UNMATCHED",
				fmt.Sprintf("identifier %q has no normalized form", identifier), common.ErrInvalidInput)
		}
		p.logger.Warn("partition.unmatched", "identifier", identifier, "routed", "train")
		return false, nil
	}
	_, in := p.testIDs[norm]
	return in, nil
}

// LoadTestIDs reads a newline-separated file of normalized test identifiers.
// Blank lines and #-comments are ignored.
func LoadTestIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open test id file: %w", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read test id file: %w", err)
	}
	return ids, nil
}
