// Package ruleset loads pattern definitions for string items from YAML.
//
// A definition file declares patterns as ordered element lists; each
// element is exactly one of value, regex, range, any, ref, or repeat,
// with the usual quantifier, gap, capture, and extractor settings:
//
//	patterns:
//	  - name: login-burst
//	    deduplicate: true
//	    elements:
//	      - value: LOGIN_FAIL
//	        min: 3
//	        max: 3
//	        capture: fails
//	      - any: true
//	        max_gap: 2
//	      - regex: "^ALERT_"
//	        capture: alert
//
// Unnamed patterns get positional defaults (pattern_0, pattern_1, ...).
// Regex elements compile through a shared LRU cache so reloading rule
// files does not recompile unchanged expressions.
package ruleset
