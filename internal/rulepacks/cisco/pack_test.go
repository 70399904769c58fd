package cisco

import (
	"reflect"
	"testing"
)

func TestNew_ModuleOrder(t *testing.T) {
	want := []string{"GENERAL", "PASSWORDS", "SERVICES", "LOGGING", "AAA", "SSH", "VTY", "SNMP", "ROUTING", "INTERFACES"}
	var got []string
	for _, r := range New() {
		got = append(got, r.ID())
		if r.Name() == "" {
			t.Errorf("rule %s has an empty Name", r.ID())
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestNewRegistry_RegistersWholePack(t *testing.T) {
	reg := NewRegistry()
	if got := len(reg.All()); got != len(New()) {
		t.Errorf("registry holds %d rules; want %d", got, len(New()))
	}
}
