package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "KMR-Leads/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "KMR Leads"
	AppID             = "com.kmrtaxandfinancialgroup.leads"
	KeyringService    = "com.kmrtaxandfinancialgroup.leads"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and exported lead files, which contain personal data.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags, Commands & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagConfig  = "config"
	FlagEnv     = "env"
	FlagLang    = "lang"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging to stderr"
	FlagDescConfig  = "Path to a YAML settings file"
	FlagDescEnv     = "Path to a dotenv settings file"
	FlagDescLang    = "Language for messages (en or ht)"

	MsgVersionOutput = "%s version %s (%s, %s/%s)\n"
	MsgUsage         = "usage: kmr-leads [flags] <add|refer|list|stats|delete|import|export|backup|sync|serve|reset> [args]"

	CmdAdd    = "add"
	CmdRefer  = "refer"
	CmdList   = "list"
	CmdStats  = "stats"
	CmdDelete = "delete"
	CmdImport = "import"
	CmdExport = "export"
	CmdBackup = "backup"
	CmdSync   = "sync"
	CmdServe  = "serve"
	CmdReset  = "reset"

	FlagQuery    = "q"
	FlagFormat   = "format"
	FlagOutput   = "o"
	FlagName     = "name"
	FlagPhone    = "phone"
	FlagEmail    = "email"
	FlagService  = "service"
	FlagNotes    = "notes"
	FlagContact  = "contact"
	FlagConsent  = "consent"
	FlagSource   = "source"
	FlagCode     = "code"
	FlagReferrer = "referrer"
	FlagYes      = "yes"

	FlagDescQuery    = "Only include leads matching this text"
	FlagDescFormat   = "Export format: csv, json, vcard, ics or pdf"
	FlagDescOutput   = "Output file (defaults to a dated name in the current directory)"
	FlagDescName     = "Full name"
	FlagDescPhone    = "Phone number"
	FlagDescEmail    = "Email address"
	FlagDescService  = "Service: tax, book, payroll, itin, biz, audit, amend or other"
	FlagDescNotes    = "Free-form notes"
	FlagDescContact  = "Best way to reach: call, text or email"
	FlagDescConsent  = "Lead agreed to be contacted"
	FlagDescSource   = "Where the lead came from"
	FlagDescCode     = "Referral code"
	FlagDescReferrer = "Name of the person who referred the lead"
	FlagDescYes      = "Confirm that the local collection should be erased"

	ListDateLayout = "2006-01-02 15:04"
	ListUnknown    = "-"
	ListColID      = "ID"

	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatVCard = "vcard"
	FormatICS   = "ics"
	FormatPDF   = "pdf"
)

// -----------------------------------------------------------------------------
// Local Persistence Keys
// -----------------------------------------------------------------------------

const (
	// PrefLeads holds the whole lead collection as a single JSON blob.
	PrefLeads = "kmr_leads_v1"
	// PrefLastBackup holds the ISO timestamp of the last successful cloud backup.
	PrefLastBackup = "kmr_last_cloud_backup"
	// PrefLastRun records the version that last opened the store.
	PrefLastRun = "last_run_version"
)

// -----------------------------------------------------------------------------
// Settings Keys & Defaults
// -----------------------------------------------------------------------------

const (
	SettingSupabaseURL = "SUPABASE_URL"
	SettingSupabaseKey = "SUPABASE_ANON_KEY"
	SettingDatabaseURL = "DATABASE_URL"
	SettingBucket      = "SUPABASE_BUCKET"
	SettingTable       = "LEADS_TABLE"
	SettingServerPort  = "SERVER_PORT"
	SettingLanguage    = "LANGUAGE"

	SourceNameEnv     = "env"
	SourceNameDotEnv  = "dotenv"
	SourceNameYAML    = "yaml"
	SourceNameKeyring = "keyring"

	DefaultBucket   = "lead_backups"
	DefaultTable    = "leads"
	DefaultPort     = "18080"
	DefaultLanguage = "en"
	DefaultStatus   = "new"
	DefaultEnvFile  = ".env"
	ConfigFileName  = "config.yaml"
)

// EnvPrefixes lists the environment prefixes searched, in priority order, before the bare name.
var EnvPrefixes = []string{"VITE_", "NEXT_PUBLIC_", "REACT_APP_", "KMR_"}

// SupportedLanguages defines the list of available lead/message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "ht"}

// -----------------------------------------------------------------------------
// Data Formats & Filenames
// -----------------------------------------------------------------------------

const (
	// TimestampLayout mirrors the browser's Date.toISOString output.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
	DateLayout      = "2006-01-02"

	FilePrefix          = "kmr-leads-"
	FilePrefixBackup    = "kmr-leads-backup-"
	FilePrefixFollowUps = "kmr-followups-"
	ExtCSV              = ".csv"
	ExtJSON             = ".json"
	ExtVCard            = ".vcf"
	ExtICS              = ".ics"
	ExtPDF              = ".pdf"

	JSONIndent = "  "
	CSVNewline = "\n"
)

// CSVColumns is the fixed export column order.
var CSVColumns = []string{
	"id", "createdAt", "type", "name", "email", "phone", "service", "notes",
	"bestContact", "consent", "source", "referralCode", "language", "referrer",
}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//KMR Leads//Follow-ups//EN"
	ICalCalName   = "Lead follow-ups"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalDomain    = "kmr-leads"
	FormatUID     = "%s@%s"
	FormatSummary = "Follow up: %s"
	FormatService = "%s (%s)"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardVersion     = "4.0"
	VCardRevLayout   = "20060102T150405Z"
	FallbackLeadName = "(no name)"

	// StubVCalendar is the minimal valid iCalendar object used when no follow-ups are due.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// PDF Report Layout
// -----------------------------------------------------------------------------

const (
	PDFOrientation = "L"
	PDFUnit        = "mm"
	PDFSize        = "A4"
	PDFFont        = "Helvetica"
	PDFTitle       = "KMR Tax & Financial Group - Leads"
	PDFAuthor      = "KMR Leads"
	PDFMargin      = 12
	PDFRowHeight   = 6
	PDFTitleSize   = 14
	PDFBodySize    = 8
	PDFFooter      = "%d leads - generated %s - page %d/{nb}"
)

// PDFColumns are the report table headers; PDFWidths their widths in PDFUnit.
var (
	PDFColumns = []string{"Created", "Type", "Name", "Email", "Phone", "Service", "Status", "Lang"}
	PDFWidths  = []float64{38, 22, 52, 62, 34, 24, 22, 14}
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	RemoteTimeout       = 20 * time.Second
	DrainTimeout        = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	DBPingTimeout       = 5 * time.Second
	DBMaxOpenConns      = 4
	DBMaxIdleConns      = 2
	DBConnMaxLifetime   = 5 * time.Minute
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteCSV       = "/leads.csv"
	RouteJSON      = "/leads.json"
	RouteVCard     = "/leads.vcf"
	RouteFollowUps = "/followups.ics"
	RouteHealth    = "/healthz"
	RouteMetrics   = "/metrics"

	// Supabase REST paths.
	PathREST    = "/rest/v1/"
	PathStorage = "/storage/v1/object/"
	QuerySelect = "select"
	QueryOrder  = "order"
	OrderNewest = "created_at.desc"
	SelectAll   = "*"
	UpsertTrue  = "true"
	DBDriver    = "postgres"

	// Remote backend names, as logged at startup.
	BackendREST = "postgrest"
	BackendSQL  = "postgres"
	BackendNone = "none"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAuthorization   = "Authorization"
	HeaderAPIKey          = "apikey"
	HeaderAccept          = "Accept"
	HeaderPrefer          = "Prefer"
	HeaderUpsert          = "x-upsert"

	MimeJSON            = "application/json"
	MimeCSV             = "text/csv; charset=utf-8"
	MimeJSONUTF8        = "application/json; charset=utf-8"
	MimeVCard           = "text/vcard; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	PreferMinimal       = "return=minimal"
	BearerPrefix        = "Bearer "

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrRemoteUnavailable = "remote backend not configured"
	ErrRemoteFailure     = "remote operation failed"
	ErrInvalidFormat     = "invalid backup: expected an array"
	ErrInvalidLead       = "invalid lead"
	ErrInvalidEmail      = "email is not well formed"
	ErrInvalidLanguage   = "language must be en or ht"
	ErrUnknownFormat     = "unknown export format"
	ErrUnknownCommand    = "unknown command"
	ErrMissingArgument   = "missing argument"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrUnexpectedStatus  = "server returned unexpected status"
	ErrDecodeRows        = "failed to decode remote rows"
	ErrDBOpen            = "failed to open database"
	ErrDBPing            = "database did not answer ping"
	ErrStoreCorrupt      = "stored lead collection is corrupt, starting empty"
	ErrStoreEncode       = "failed to encode lead collection"
	ErrStoreStamp        = "stored backup timestamp is unreadable, treating as absent"
	ErrStoreRead         = "failed to read stored document"
	ErrStoreWrite        = "failed to write stored document"
	ErrStoreRemove       = "failed to remove stored document"
	ErrResetConfirm      = "reset erases every local lead, pass -yes to confirm"
	ErrEncodeJSON        = "failed to encode JSON"
	ErrEncodeVCard       = "failed to encode vCard data"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrPDFRender         = "failed to render PDF report"
	ErrYAMLRead          = "failed to read YAML settings"
	ErrDotEnvRead        = "failed to read dotenv settings"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app cache dir"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrRender            = "failed to render feed snapshot"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrWriteFile         = "failed to write export file"
	ErrReadFile          = "failed to read import file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Lead feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HealthOK            = "ok"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgEngineStarted  = "Lead collection loaded"
	MsgFetchSkipped   = "Remote fetch skipped, running in local-only mode"
	MsgRemoteSkipped  = "Remote backend not configured, operation skipped"
	MsgFetchFailed    = "Remote fetch failed, keeping local collection"
	MsgFetchMerged    = "Remote leads merged"
	MsgInsertFailed   = "Remote insert failed"
	MsgInsertDone     = "Lead pushed to remote"
	MsgBackupDue      = "Daily cloud backup due"
	MsgBackupDone     = "Cloud backup saved"
	MsgBackupFailed   = "Cloud backup failed"
	MsgBackupBusy     = "Cloud backup already in flight"
	MsgCommit         = "Lead collection replaced"
	MsgDrainTimeout   = "Background tasks still running at exit"
	MsgImportDone     = "Import merged"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgRequest        = "Remote request"
	MsgDBFallback     = "Database unreachable, falling back to REST"
	MsgRemoteSelected = "Remote backend selected"
	MsgSettingsLoaded = "Settings loaded"
	MsgSourceFailed   = "Settings source unavailable"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyLeadAdded     = "lead_added"
	TKeyReferralSent  = "referral_sent"
	TKeyLeadDeleted   = "lead_deleted"
	TKeyLeadNotFound  = "lead_not_found"
	TKeyLeadsEmpty    = "leads_empty"
	TKeyImported      = "imported"
	TKeyImportFailed  = "import_failed"
	TKeyExported      = "exported"
	TKeyBackupSaved   = "backup_saved"
	TKeyBackupFailed  = "backup_failed"
	TKeyBackupOff     = "backup_unavailable"
	TKeyLocalOnly     = "local_only"
	TKeyCloudActive   = "cloud_active"
	TKeySynced        = "synced"
	TKeySyncFailed    = "sync_failed"
	TKeyReset         = "reset_done"
	TKeyStatTotal     = "stat_total"
	TKeyStatTax       = "stat_tax"
	TKeyStatReferrals = "stat_referrals"
	TKeyStatusNew     = "status_new"
	TKeyInvalidLead   = "invalid_lead"
	TKeyServing       = "serving"
	TKeyColCreated    = "col_created"
	TKeyColName       = "col_name"
	TKeyColService    = "col_service"
	TKeyColStatus     = "col_status"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyOp        = "op"
	LogKeyBackend   = "backend"
	LogKeySource    = "source"
	LogKeyLeadID    = "lead_id"
	LogKeyLabel     = "label"
	LogKeyCount     = "count"
	LogKeyBefore    = "before"
	LogKeyAfter     = "after"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"
	LogKeyLast      = "last_backup"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine   = "engine"
	CompStore    = "store"
	CompRemote   = "remote"
	CompServer   = "server"
	CompSettings = "settings"
	CompMain     = "main"
	CompI18n     = "i18n"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricNamespace = "kmr"
	ResultOK        = "ok"
	ResultError     = "error"
	ResultSkipped   = "unavailable"
	OpFetch         = "fetch"
	OpInsert        = "insert"
	OpUpload        = "upload"
)
