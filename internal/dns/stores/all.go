// Package stores imports all DNS store packages to trigger their init() registration.
package stores

import (
	_ "github.com/yuriy-kovalchuk/tailsync/internal/dns/pihole"
)
