package conformance

var (
	skipPrefixes prefixList

	// Paths are relative to the suite root.
	skipList = map[string]bool{
		// checks for Math, Date and parseInt on the global object
		"test262/external/contributions/Google/sputnik_conformance_modified/10_Execution_Contexts/10.2_Lexical_Environments/10.2.3_The_Global_Environment/S10.1.5_A1.1_T4.js": true,
	}

	featuresBlackList = []string{
		"let",
		"const",
		"generators",
		"async-functions",
		"async-iteration",
		"arrow-function",
		"class",
		"destructuring-binding",
		"destructuring-assignment",
		"default-parameters",
		"template",
		"Symbol",
		"Symbol.iterator",
		"Proxy",
		"Reflect",
		"Promise",
		"BigInt",
		"TypedArray",
		"Map",
		"Set",
		"WeakMap",
		"WeakSet",
		"json-superset",
		"optional-chaining",
	}
)

func init() {
	skipPrefixes.Add(
		// modules
		"test/language/export/",
		"test/language/import/",
		"test/language/module-code/",

		// no Intl
		"test/intl402/",
		"SpiderMonkey/Intl/",

		// built-ins beyond Object, Function, Array and the error types
		"test/built-ins/Date/",
		"test/built-ins/RegExp/",
		"test/built-ins/Math/",
		"test/built-ins/JSON/",
		"SpiderMonkey/ecma_5/JSON/",
		"SpiderMonkey/ecma_5/RegExp/",
		"test262/external/contributions/Google/sputniktests/tests/Conformance/15_Native_ECMA_Script_Objects/15.8_The_Math_Object/",

		// needs Reflect.parse
		"SpiderMonkey/js1_8_5/reflect-parse/",
	)
}

type prefixList struct {
	prefixes map[int]map[string]struct{}
}

func (pl *prefixList) Add(prefixes ...string) {
	for _, prefix := range prefixes {
		l := pl.prefixes[len(prefix)]
		if l == nil {
			l = make(map[string]struct{})
			if pl.prefixes == nil {
				pl.prefixes = make(map[int]map[string]struct{})
			}
			pl.prefixes[len(prefix)] = l
		}
		l[prefix] = struct{}{}
	}
}

func (pl *prefixList) Match(s string) bool {
	for l, prefixes := range pl.prefixes {
		if len(s) >= l {
			if _, exists := prefixes[s[:l]]; exists {
				return true
			}
		}
	}
	return false
}

func blacklistedFeature(features []string) string {
	for _, feature := range features {
		for _, bl := range featuresBlackList {
			if feature == bl {
				return feature
			}
		}
	}
	return ""
}
