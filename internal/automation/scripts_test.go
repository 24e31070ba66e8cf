package automation

import (
	"strings"
	"testing"
)

func TestUnreadCountScript(t *testing.T) {
	js := unreadCountScript()
	if !strings.Contains(js, "parseInt") {
		t.Error("expected badge text parsed as integers")
	}
	if !strings.Contains(js, "isNaN") {
		t.Error("expected non-numeric badges skipped")
	}
	if !strings.Contains(js, "__result=") {
		t.Error("expected script to assign __result")
	}
}

func TestListScriptEmbedsLimit(t *testing.T) {
	js := listScript([]string{".item"}, 7, map[string][]string{"name": {".name"}})
	if !strings.Contains(js, "__limit=7") {
		t.Error("expected limit embedded as a JSON literal")
	}
	if !strings.Contains(js, `[".item"]`) {
		t.Error("expected item selectors embedded as a JSON array")
	}
}

func TestKeywordClickScriptTags(t *testing.T) {
	js := keywordClickScript([]string{"Call", "Dial"}, []string{".call-button"})
	if !strings.Contains(js, `["call","dial"]`) {
		t.Error("expected keywords lowercased")
	}
	if !strings.Contains(js, `"clicked:text:"`) {
		t.Error("expected clicked:text tag")
	}
	if !strings.Contains(js, `"clicked:selector:"`) {
		t.Error("expected clicked:selector tag")
	}
	if !strings.Contains(js, `"not-found:"`) {
		t.Error("expected not-found diagnostic tag")
	}
}

func TestFillFieldScriptEscapesValue(t *testing.T) {
	hostile := `";document.title="pwned";//`
	js := fillFieldScript([]string{"input"}, hostile)
	if strings.Contains(js, hostile) {
		t.Error("raw value spliced into script")
	}
	if !strings.Contains(js, `dispatchEvent`) {
		t.Error("expected input/change events dispatched")
	}
}

func TestSearchScriptEscapesQuery(t *testing.T) {
	js := searchScript(`"+alert(1)+"`, 5)
	if strings.Contains(js, `"+alert(1)+"`+";") {
		t.Error("raw query spliced into script")
	}
	if !strings.Contains(js, `\"+alert(1)+\"`) {
		t.Error("expected query embedded as an escaped JSON literal")
	}
}

func TestReadyProbeScript(t *testing.T) {
	js := readyProbeScript()
	if !strings.Contains(js, "readyState") {
		t.Error("expected document readiness check")
	}
	if !strings.Contains(js, `"call"`) || !strings.Contains(js, `"dial"`) {
		t.Error("expected dial control detection")
	}
}

func TestDumpDOMScriptCapsElements(t *testing.T) {
	js := dumpDOMScript()
	if !strings.Contains(js, "100") {
		t.Error("expected element ceiling in snapshot script")
	}
}

func TestInjectCSSScript(t *testing.T) {
	js := injectCSSScript(":root{--dd-bg:#000;}")
	if !strings.Contains(js, "__dd_theme") {
		t.Error("expected managed style element id")
	}

	clear := injectCSSScript("")
	if !strings.Contains(clear, "remove()") {
		t.Error("expected empty css to remove the override")
	}
}
