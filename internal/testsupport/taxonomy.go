package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reach/internal/taxonomy"
)

// RetailTaxonomyJSON is the shared fixture. outlet shares the "shoes" leaf
// with apparel; grocery, gift_cards and rail each have a single leaf.
const RetailTaxonomyJSON = `{
  "retail": {
    "apparel": {
      "metadata": {"icon": "shirt"},
      "items": {
        "shoes": {"tags": ["seasonal"], "available_audience": 300},
        "hats": {"tags": ["seasonal", "accessory"], "available_audience": 250}
      }
    },
    "grocery": {
      "items": {
        "dairy": {"tags": ["perishable"], "available_audience": 10000}
      }
    },
    "outlet": {
      "items": {
        "shoes": {"tags": ["clearance"], "available_audience": 40},
        "socks": {"tags": ["clearance"], "available_audience": 90}
      }
    },
    "gift_cards": {
      "items": {
        "voucher": {"tags": ["digital"], "available_audience": 5}
      }
    }
  },
  "travel": {
    "air_travel": {
      "items": {
        "business_class": {"tags": ["premium"], "available_audience": 120},
        "economy": {"tags": ["budget"], "available_audience": 900}
      }
    },
    "rail": {
      "items": {
        "commuters": {"tags": ["daily"], "available_audience": 2000}
      }
    }
  }
}`

// RetailTree parses RetailTaxonomyJSON.
func RetailTree(t testing.TB) *taxonomy.Tree {
	t.Helper()

	tree, err := taxonomy.Parse([]byte(RetailTaxonomyJSON), taxonomy.FormatJSON)
	if err != nil {
		t.Fatalf("parse retail taxonomy: %v", err)
	}
	return tree
}

// WriteTaxonomyFile writes contents to path, creating parent directories.
func WriteTaxonomyFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
