package datapoint

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDefinition(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		dataType DataType
		wantErr  error
	}{
		{name: "double", topic: "cpuusage", dataType: TypeDouble},
		{name: "tag", topic: "tag1", dataType: TypeTag},
		{name: "empty topic", topic: "", dataType: TypeBool, wantErr: ErrEmptyTopic},
		{name: "unknown type", topic: "x", dataType: DataType("Decimal"), wantErr: ErrInvalidDataType},
		{name: "lowercase type rejected", topic: "x", dataType: DataType("bool"), wantErr: ErrInvalidDataType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefinition(tt.topic, tt.dataType, nil, DefinitionOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewDefinition() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefinition_DisplayNameDefaultsToTopic(t *testing.T) {
	d, err := NewDefinition("failcount", TypeUint32, 0, DefinitionOptions{})
	if err != nil {
		t.Fatalf("NewDefinition() error = %v", err)
	}
	if d.DisplayName() != "failcount" {
		t.Errorf("DisplayName() = %q, want %q", d.DisplayName(), "failcount")
	}
}

func TestDefinition_MarshalJSON(t *testing.T) {
	d, err := NewDefinition("configrunningperiod", TypeInt32, 5, DefinitionOptions{
		Unit:        "s",
		IsInput:     true,
		DisplayName: "Running period",
	})
	if err != nil {
		t.Fatalf("NewDefinition() error = %v", err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]any{
		"topic":        "configrunningperiod",
		"defaultValue": float64(5),
		"dataType":     "Int32",
		"unit":         "s",
		"isInput":      true,
		"isOutput":     false,
		"displayName":  "Running period",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MarshalJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestQuality_String(t *testing.T) {
	if QualityGood.String() != "good" {
		t.Errorf("QualityGood.String() = %q", QualityGood.String())
	}
	if Quality(0x11).String() != "quality(0x11)" {
		t.Errorf("Quality(0x11).String() = %q", Quality(0x11).String())
	}
}

func TestCatalogue(t *testing.T) {
	general, err := GeneralDefinitions()
	if err != nil {
		t.Fatalf("GeneralDefinitions() error = %v", err)
	}
	if len(general) != 10 {
		t.Fatalf("GeneralDefinitions() = %d definitions, want 10", len(general))
	}
	for i, d := range general {
		if d.Topic() != Metric(i).Topic() {
			t.Errorf("definition %d topic = %q, want %q", i, d.Topic(), Metric(i).Topic())
		}
		if !d.IsOutput() {
			t.Errorf("definition %q should be an output", d.Topic())
		}
	}

	cfg, err := ConfigDefinitions(5, 60)
	if err != nil {
		t.Fatalf("ConfigDefinitions() error = %v", err)
	}
	if len(cfg) != 2 || cfg[0].Topic() != "configrunningperiod" || cfg[1].Topic() != "configrestartinterval" {
		t.Errorf("ConfigDefinitions() topics unexpected: %+v", cfg)
	}
}

func fullMap() FQNMap {
	m := FQNMap{}
	for _, id := range AllMetrics() {
		m[id.Topic()] = "app::general::" + id.Topic()
	}
	for _, id := range AllConfigParams() {
		m[id.Topic()] = "app::config::" + id.Topic()
	}
	return m
}

func TestResolve(t *testing.T) {
	names, err := Resolve(fullMap())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got := names.Metric(CPUUsageMax); got != "app::general::cpuusagemax" {
		t.Errorf("Metric(CPUUsageMax) = %q", got)
	}
	if got := names.Config(RestartInterval); got != "app::config::configrestartinterval" {
		t.Errorf("Config(RestartInterval) = %q", got)
	}
	if id, ok := names.ConfigByFQN("app::config::configrunningperiod"); !ok || id != RunningPeriod {
		t.Errorf("ConfigByFQN() = %v, %v", id, ok)
	}
	if _, ok := names.ConfigByFQN("app::general::runcounter"); ok {
		t.Error("ConfigByFQN() matched a metric")
	}
	if id, ok := names.MetricByFQN("app::general::failcount"); !ok || id != FailCount {
		t.Errorf("MetricByFQN() = %v, %v", id, ok)
	}
	if n := len(names.AllTopics()); n != 12 {
		t.Errorf("AllTopics() = %d entries, want 12", n)
	}
}

func TestResolve_Missing(t *testing.T) {
	m := fullMap()
	delete(m, "cputemperature")

	_, err := Resolve(m)
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Resolve() error = %v, want ErrNotRegistered", err)
	}
}

func TestFQNMap_Merge(t *testing.T) {
	a := FQNMap{"a": "1", "b": "2"}
	b := FQNMap{"b": "3", "c": "4"}

	got := a.Merge(b)
	want := FQNMap{"a": "1", "b": "3", "c": "4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
	if a["b"] != "2" {
		t.Error("Merge() modified the receiver")
	}
}
