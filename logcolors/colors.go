package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Yellow = "\033[33m"
	Red    = "\033[31m"

	BrightGreen   = "\033[92m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightRed     = "\033[91m"
)

// Cache-related log prefixes
const (
	LogCache        = Blue + "[Cache]" + Reset
	LogCacheArtwork = Green + "[Cache:Artwork]" + Reset
	LogCacheLookup  = Cyan + "[Cache:Lookup]" + Reset
)

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAPIKey    = Purple + "[APIKey]" + Reset
)

// Server/Init log prefixes
const (
	LogServer = Green + "[Server]" + Reset
	LogConfig = Cyan + "[Config]" + Reset
	LogStats  = Blue + "[Stats]" + Reset
	LogHTTP   = Cyan + "[HTTP]" + Reset
)

// Resolver log prefixes
const (
	LogArtwork  = Green + "[Artwork]" + Reset
	LogResolver = Blue + "[Resolver]" + Reset
	LogLookup   = Purple + "[Lookup]" + Reset
	LogWaiter   = Cyan + "[Waiter]" + Reset
	LogWarning  = Red + "[Warning]" + Reset
)

// ProviderPrefix returns a colored provider prefix with the given name
func ProviderPrefix(name string) string {
	return Purple + "[Provider:" + name + "]" + Reset
}

// waiterColors are the colors used for waiter IDs (rotating based on hash)
var waiterColors = []string{
	Green, Blue, Purple, Cyan, Red,
	BrightGreen, BrightBlue, BrightMagenta, BrightCyan, BrightRed,
}

// Waiter returns a colored waiter ID for log messages.
// Same ID always gets the same color.
func Waiter(id string) string {
	hash := 0
	for _, c := range id {
		hash += int(c)
	}
	color := waiterColors[hash%len(waiterColors)]
	return color + id + Reset
}
