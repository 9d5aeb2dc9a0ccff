package metrics

// Config selects and configures the metric sinks. The planner is a batch
// job, so Prometheus metrics are pushed to a gateway rather than scraped.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PushgatewayURL    string `json:"pushgateway_url"`
	JobName           string `json:"job_name"`

	InfluxEnabled bool   `json:"influx_enabled"`
	InfluxURL     string `json:"influx_url"`
	InfluxToken   string `json:"influx_token"`
	InfluxOrg     string `json:"influx_org"`
	InfluxBucket  string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.JobName == "" {
		c.JobName = "rotaplan"
	}
}
