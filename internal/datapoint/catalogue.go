package datapoint

// Registration categories on the remote server.
const (
	CategoryConfig  = "config"
	CategoryGeneral = "general"
)

// ConfigDefinitions returns the definitions for the configuration parameters.
//
// Parameters:
//   - periodSeconds: default running period
//   - restartMinutes: default statistics reset interval
func ConfigDefinitions(periodSeconds, restartMinutes int) ([]Definition, error) {
	specs := []struct {
		id    ConfigParam
		def   any
		unit  string
		label string
	}{
		{RunningPeriod, periodSeconds, "s", "Running period"},
		{RestartInterval, restartMinutes, "min", "Restart interval"},
	}

	defs := make([]Definition, 0, len(specs))
	for _, s := range specs {
		d, err := NewDefinition(s.id.Topic(), TypeInt32, s.def, DefinitionOptions{
			Unit:        s.unit,
			IsInput:     true,
			DisplayName: s.label,
		})
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// GeneralDefinitions returns the definitions for every Metric.
func GeneralDefinitions() ([]Definition, error) {
	specs := [metricCount]struct {
		typ   DataType
		def   any
		unit  string
		label string
	}{
		RunCounter:     {TypeUint64, 0, "", "Run counter"},
		LastRun:        {TypeString, "", "", "Last run"},
		CPUUsage:       {TypeDouble, 0.0, "%", "CPU usage"},
		CPUUsageMin:    {TypeDouble, 0.0, "%", "CPU usage min"},
		CPUUsageMax:    {TypeDouble, 0.0, "%", "CPU usage max"},
		MemoryUsage:    {TypeDouble, 0.0, "%", "Memory usage"},
		MemoryUsageMin: {TypeDouble, 0.0, "%", "Memory usage min"},
		MemoryUsageMax: {TypeDouble, 0.0, "%", "Memory usage max"},
		CPUTemperature: {TypeDouble, 0.0, "°C", "CPU temperature"},
		FailCount:      {TypeUint32, 0, "", "Fail count"},
	}

	defs := make([]Definition, 0, metricCount)
	for id, s := range specs {
		d, err := NewDefinition(Metric(id).Topic(), s.typ, s.def, DefinitionOptions{
			Unit:        s.unit,
			IsOutput:    true,
			DisplayName: s.label,
		})
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}
