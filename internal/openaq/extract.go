package openaq

import (
	"log/slog"
	"time"

	"github.com/senegalairwatch/senegal-air-watch/internal/common"
)

// ExtractParameter reads the parameter block of a sensor. The display name
// falls back to the parameter name when the API does not provide one.
func ExtractParameter(s Sensor) ParameterInfo {
	info := ParameterInfo{
		ID:          common.PathString(s, "parameter.id", common.NA),
		Name:        common.PathString(s, "parameter.name", common.NA),
		DisplayName: common.PathString(s, "parameter.displayName", common.NA),
		Unit:        common.PathString(s, "parameter.units", common.NA),
	}
	if info.DisplayName == common.NA {
		info.DisplayName = common.PathString(s, "parameter.display_name", common.NA)
	}
	if info.DisplayName == common.NA && info.Name != common.NA {
		info.DisplayName = info.Name
	}
	return info
}

// NewSensorDescriptor flattens a sensor of a station. ok is false when none of
// sensor id, parameter name and unit could be extracted; such sensors carry no
// usable information and are discarded by the explorer.
func NewSensorDescriptor(st StationInfo, s Sensor, exploredAt time.Time) (SensorDescriptor, bool) {
	param := ExtractParameter(s)
	d := SensorDescriptor{
		StationID:            st.ID,
		StationName:          st.Name,
		SensorID:             common.PathString(s, "id", common.NA),
		SensorName:           common.PathString(s, "name", common.NA),
		ParameterID:          param.ID,
		ParameterName:        param.Name,
		ParameterDisplayName: param.DisplayName,
		Unit:                 param.Unit,
		ExploredAt:           exploredAt,
	}
	ok := d.SensorID != common.NA || d.ParameterName != common.NA || d.Unit != common.NA
	return d, ok
}

// NewStationInfo flattens a location listing entry. Measurement dates that do
// not parse are left nil and logged at debug level.
func NewStationInfo(loc Location, exploredAt time.Time, logger *slog.Logger) StationInfo {
	info := StationInfo{
		ID:              loc.ID,
		Name:            loc.Name,
		Country:         common.NA,
		CountryCode:     common.NA,
		Owner:           common.NA,
		Provider:        common.NA,
		IsMobile:        loc.IsMobile,
		IsMonitor:       loc.IsMonitor,
		SensorCount:     len(loc.Sensors),
		InstrumentTypes: make([]string, 0, len(loc.Instruments)),
		ExploredAt:      exploredAt,
	}
	if loc.Locality != nil {
		info.Locality = *loc.Locality
	}
	if loc.Country != nil {
		info.Country = loc.Country.Name
		info.CountryCode = loc.Country.Code
	}
	if loc.Coordinates != nil {
		info.Latitude = loc.Coordinates.Latitude
		info.Longitude = loc.Coordinates.Longitude
	}
	if loc.Owner != nil {
		info.Owner = loc.Owner.Name
	}
	if loc.Provider != nil {
		info.Provider = loc.Provider.Name
	}
	if loc.DatetimeFirst != nil {
		info.FirstMeasurement = parseUTC(loc.DatetimeFirst.UTC, "datetimeFirst", loc.ID, logger)
	}
	if loc.DatetimeLast != nil {
		info.LastMeasurement = parseUTC(loc.DatetimeLast.UTC, "datetimeLast", loc.ID, logger)
	}
	for _, instr := range loc.Instruments {
		info.InstrumentTypes = append(info.InstrumentTypes, instr.Name)
	}
	return info
}

func parseUTC(s, field string, stationID int, logger *slog.Logger) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if logger != nil {
			logger.Debug("unparseable measurement date",
				"station_id", stationID,
				"field", field,
				"value", s,
				"error", err,
			)
		}
		return nil
	}
	ts = ts.UTC()
	return &ts
}
