package config

// defaults 按键名排列的默认值，配置文件和环境变量可覆盖
var defaults = map[string]interface{}{
	"server.name":             "hotel-frontdesk-backend",
	"server.mode":             "debug",
	"server.port":             8000,
	"server.read_timeout":     30,
	"server.write_timeout":    30,
	"server.shutdown_timeout": 10,
	"server.request_timeout":  15,

	"database.driver":            "postgres",
	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "postgres",
	"database.password":          "postgres",
	"database.name":              "hotel_frontdesk",
	"database.sslmode":           "disable",
	"database.timezone":          "America/Bogota",
	"database.max_idle_conns":    10,
	"database.max_open_conns":    50,
	"database.conn_max_lifetime": 60,
	"database.log_mode":          true,
	"database.slow_threshold":    200,
	"database.auto_migrate":      true,

	"redis.host":           "localhost",
	"redis.port":           6379,
	"redis.password":       "",
	"redis.db":             0,
	"redis.pool_size":      20,
	"redis.min_idle_conns": 5,
	"redis.dial_timeout":   5,
	"redis.read_timeout":   3,
	"redis.write_timeout":  3,

	"jwt.secret":               devJWTSecret,
	"jwt.access_token_expire":  12,
	"jwt.refresh_token_expire": 168,
	"jwt.issuer":               "hotel-frontdesk",

	"crypto.bcrypt_cost": 10,

	"logger.level":       "debug",
	"logger.format":      "console",
	"logger.output":      "stdout",
	"logger.file_path":   "./logs/app.log",
	"logger.max_size":    100,
	"logger.max_backups": 10,
	"logger.max_age":     30,
	"logger.compress":    true,
	"logger.caller":      true,

	"metrics.enabled":   true,
	"metrics.namespace": "frontdesk",
	"metrics.path":      "/metrics",

	"tracing.enabled":      false,
	"tracing.service_name": "hotel-frontdesk-backend",
	"tracing.endpoint":     "",
	"tracing.sample_rate":  1.0,

	"ratelimit.enabled":          true,
	"ratelimit.requests_per_min": 600,
	"ratelimit.login_per_min":    10,

	"cors.allowed_origins":   []string{"*"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
	"cors.exposed_headers":   []string{"X-Request-ID", "X-Trace-ID", "Content-Disposition"},
	"cors.allow_credentials": false,
	"cors.max_age":           86400,

	"business.hotel_name":           "Hotel",
	"business.timezone":             "America/Bogota",
	"business.currency":             "COP",
	"business.iva_percentage":       19,
	"business.mattress_price":       20000,
	"business.fallback_rate_hotel":  80000,
	"business.fallback_rate_other":  150000,
	"business.checkout_room_status": "Limpieza",
	"business.settings_cache_ttl":   300,
	"business.allow_admin_signup":   true,
	"business.stale_cleaning_hours": 6,

	"outbox.batch_size":    50,
	"outbox.max_attempts":  8,
	"outbox.retry_backoff": 30,

	"scheduler.enabled":              true,
	"scheduler.outbox_spec":          "@every 30s",
	"scheduler.report_archive_spec":  "0 2 * * *",
	"scheduler.stale_cleaning_spec":  "@every 1h",
	"scheduler.audit_purge_spec":     "30 3 * * *",
	"scheduler.audit_retention_days": 365,

	"oss.enabled":           false,
	"oss.endpoint":          "",
	"oss.access_key_id":     "",
	"oss.access_key_secret": "",
	"oss.bucket":            "",
	"oss.custom_domain":     "",
	"oss.report_dir":        "reports/",

	"sms.enabled":              false,
	"sms.access_key_id":        "",
	"sms.access_key_secret":    "",
	"sms.sign_name":            "",
	"sms.endpoint":             "dysmsapi.aliyuncs.com",
	"sms.reservation_template": "SMS_RESERVATION",

	"mqtt.enabled":         false,
	"mqtt.broker":          "localhost",
	"mqtt.port":            1883,
	"mqtt.client_id":       "hotel-frontdesk",
	"mqtt.username":        "",
	"mqtt.password":        "",
	"mqtt.keep_alive":      60,
	"mqtt.connect_timeout": 10,
	"mqtt.qos":             1,
	"mqtt.retained":        true,
	"mqtt.topic_prefix":    "hotel/",

	"smtp.enabled":  false,
	"smtp.host":     "",
	"smtp.port":     587,
	"smtp.username": "",
	"smtp.password": "",
	"smtp.from":     "",

	"geography.source_url": "https://raw.githubusercontent.com/marcovega/colombia-json/master/colombia.min.json",
	"geography.cache_ttl":  86400,
	"geography.timeout":    10,
}
