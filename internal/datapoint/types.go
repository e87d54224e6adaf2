package datapoint

import (
	"encoding/json"
	"fmt"
)

// DataType is the value type of a data point as understood by the remote server.
type DataType string

// Supported data types. The set is fixed; NewDefinition rejects anything else.
const (
	TypeBool   DataType = "Bool"
	TypeInt8   DataType = "Int8"
	TypeInt16  DataType = "Int16"
	TypeInt32  DataType = "Int32"
	TypeInt64  DataType = "Int64"
	TypeUint8  DataType = "Uint8"
	TypeUint16 DataType = "Uint16"
	TypeUint32 DataType = "Uint32"
	TypeUint64 DataType = "Uint64"
	TypeFloat  DataType = "Float"
	TypeDouble DataType = "Double"
	TypeEnum   DataType = "Enum"
	TypeString DataType = "String"
	TypeJSON   DataType = "JSON"
	TypeTag    DataType = "Tag"
)

var validDataTypes = map[DataType]struct{}{
	TypeBool: {}, TypeInt8: {}, TypeInt16: {}, TypeInt32: {}, TypeInt64: {},
	TypeUint8: {}, TypeUint16: {}, TypeUint32: {}, TypeUint64: {},
	TypeFloat: {}, TypeDouble: {}, TypeEnum: {}, TypeString: {}, TypeJSON: {}, TypeTag: {},
}

// Valid reports whether t is one of the supported data types.
func (t DataType) Valid() bool {
	_, ok := validDataTypes[t]
	return ok
}

// Quality accompanies a written value and tells consumers how far to trust it.
type Quality int

// Quality codes follow the OPC convention used by the remote server.
const (
	QualityBad       Quality = 0x00
	QualityUncertain Quality = 0x40
	QualityGood      Quality = 0xC0
)

// String returns the quality name.
func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityUncertain:
		return "uncertain"
	case QualityBad:
		return "bad"
	default:
		return fmt.Sprintf("quality(0x%02X)", int(q))
	}
}

// Definition describes one data point. It is immutable once constructed;
// use NewDefinition to build one.
type Definition struct {
	topic        string
	defaultValue any
	dataType     DataType
	unit         string
	isInput      bool
	isOutput     bool
	displayName  string
}

// DefinitionOptions carries the optional attributes of a Definition.
type DefinitionOptions struct {
	Unit        string
	IsInput     bool
	IsOutput    bool
	DisplayName string
}

// NewDefinition validates and builds a Definition.
//
// Returns ErrEmptyTopic if topic is empty and ErrInvalidDataType if dataType
// is not in the supported set.
func NewDefinition(topic string, dataType DataType, defaultValue any, opts DefinitionOptions) (Definition, error) {
	if topic == "" {
		return Definition{}, ErrEmptyTopic
	}
	if !dataType.Valid() {
		return Definition{}, fmt.Errorf("%w: %q", ErrInvalidDataType, dataType)
	}

	displayName := opts.DisplayName
	if displayName == "" {
		displayName = topic
	}

	return Definition{
		topic:        topic,
		defaultValue: defaultValue,
		dataType:     dataType,
		unit:         opts.Unit,
		isInput:      opts.IsInput,
		isOutput:     opts.IsOutput,
		displayName:  displayName,
	}, nil
}

// Topic returns the fully qualified topic name.
func (d Definition) Topic() string { return d.topic }

// DefaultValue returns the value registered with the definition.
func (d Definition) DefaultValue() any { return d.defaultValue }

// DataType returns the declared value type.
func (d Definition) DataType() DataType { return d.dataType }

// Unit returns the engineering unit, empty when unitless.
func (d Definition) Unit() string { return d.unit }

// IsInput reports whether the point is flagged as an input.
func (d Definition) IsInput() bool { return d.isInput }

// IsOutput reports whether the point is flagged as an output.
func (d Definition) IsOutput() bool { return d.isOutput }

// DisplayName returns the human readable label.
func (d Definition) DisplayName() string { return d.displayName }

// MarshalJSON encodes the definition in the registration request format.
func (d Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Topic        string   `json:"topic"`
		DefaultValue any      `json:"defaultValue"`
		DataType     DataType `json:"dataType"`
		Unit         string   `json:"unit,omitempty"`
		IsInput      bool     `json:"isInput"`
		IsOutput     bool     `json:"isOutput"`
		DisplayName  string   `json:"displayName"`
	}{
		Topic:        d.topic,
		DefaultValue: d.defaultValue,
		DataType:     d.dataType,
		Unit:         d.unit,
		IsInput:      d.isInput,
		IsOutput:     d.isOutput,
		DisplayName:  d.displayName,
	})
}
