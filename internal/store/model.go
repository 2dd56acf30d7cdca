package store

// HourlyWeather is one persisted sample. Rows are only ever inserted or cleared in bulk.
type HourlyWeather struct {
	ID                 uint64  `gorm:"primaryKey;autoIncrement"`
	CityName           string  `gorm:"column:city_name;type:text"`
	Temperature        float64 `gorm:"column:temperature"`
	WeatherDescription string  `gorm:"column:weather_description;type:text"`
	Timestamp          string  `gorm:"column:timestamp;type:text"`
}

// TableName specifies the table name for HourlyWeather.
func (HourlyWeather) TableName() string {
	return "hourly_weather"
}
