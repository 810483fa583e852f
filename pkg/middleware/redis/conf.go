package redis

type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
	// SlowThreshold logs commands slower than this, in milliseconds.
	SlowThreshold int64
}
