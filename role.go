package axis

import (
	"strings"
	"sync"
)

// Role classifies what physical dimension an axis represents
type Role int

const (
	RoleUnknown Role = iota
	RoleTime
	RoleLongitude
	RoleLatitude
	RoleLevel
)

func (r Role) String() string {
	switch r {
	case RoleTime:
		return "time"
	case RoleLongitude:
		return "longitude"
	case RoleLatitude:
		return "latitude"
	case RoleLevel:
		return "level"
	}
	return "unknown"
}

var (
	longitudeNames = map[string]struct{}{"lon": {}, "longitude": {}, "nav_lon": {}}
	latitudeNames  = map[string]struct{}{"lat": {}, "latitude": {}, "nav_lat": {}}
	levelNames     = map[string]struct{}{"lev": {}, "level": {}, "plev": {}, "depth": {}, "height": {}}
	timeNames      = map[string]struct{}{"time": {}}
)

// Classify infers an axis role from its id and CF-style attributes.
// Attributes win over the id: an explicit "axis" hint first, then units,
// then standard_name.
func Classify(id string, attrs map[string]interface{}) Role {
	switch strings.ToUpper(attrString(attrs, "axis")) {
	case "X":
		return RoleLongitude
	case "Y":
		return RoleLatitude
	case "Z":
		return RoleLevel
	case "T":
		return RoleTime
	}

	units := strings.ToLower(attrString(attrs, "units"))
	switch {
	case strings.Contains(units, " since "):
		return RoleTime
	case isLongitudeUnits(units):
		return RoleLongitude
	case isLatitudeUnits(units):
		return RoleLatitude
	}

	switch strings.ToLower(attrString(attrs, "standard_name")) {
	case "longitude", "grid_longitude":
		return RoleLongitude
	case "latitude", "grid_latitude":
		return RoleLatitude
	case "time":
		return RoleTime
	case "air_pressure", "depth", "height", "altitude":
		return RoleLevel
	}

	name := strings.ToLower(id)
	if _, ok := longitudeNames[name]; ok {
		return RoleLongitude
	}
	if _, ok := latitudeNames[name]; ok {
		return RoleLatitude
	}
	if _, ok := levelNames[name]; ok {
		return RoleLevel
	}
	if _, ok := timeNames[name]; ok {
		return RoleTime
	}
	return RoleUnknown
}

func isLongitudeUnits(u string) bool {
	switch u {
	case "degrees_east", "degree_east", "degree_e", "degrees_e", "degreee", "degreese":
		return true
	}
	return false
}

func isLatitudeUnits(u string) bool {
	switch u {
	case "degrees_north", "degree_north", "degree_n", "degrees_n", "degreen", "degreesn":
		return true
	}
	return false
}

// isAngularUnits reports whether u measures angle in degrees. Empty units
// count, since longitude axes often omit them.
func isAngularUnits(u string) bool {
	return u == "" || strings.HasPrefix(strings.ToLower(u), "degree")
}

func attrString(attrs map[string]interface{}, key string) string {
	if s, ok := attrs[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// RoleCache memoizes role classifications by axis id. It is safe for
// concurrent use. The first classification stored for an id wins; entries are
// never invalidated implicitly, so callers that change an axis role after
// first use must Delete or Clear.
type RoleCache struct {
	lk    sync.RWMutex
	roles map[string]Role
}

func NewRoleCache() *RoleCache {
	return &RoleCache{roles: map[string]Role{}}
}

func (c *RoleCache) Get(id string) (Role, bool) {
	c.lk.RLock()
	defer c.lk.RUnlock()
	r, ok := c.roles[id]
	return r, ok
}

// Set stores r for id unless a role is already present, and returns the role
// that is stored after the call
func (c *RoleCache) Set(id string, r Role) Role {
	c.lk.Lock()
	defer c.lk.Unlock()
	if prev, ok := c.roles[id]; ok {
		return prev
	}
	c.roles[id] = r
	return r
}

func (c *RoleCache) Delete(id string) {
	c.lk.Lock()
	defer c.lk.Unlock()
	delete(c.roles, id)
}

func (c *RoleCache) Clear() {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.roles = map[string]Role{}
}

func (c *RoleCache) Len() int {
	c.lk.RLock()
	defer c.lk.RUnlock()
	return len(c.roles)
}

// classify consults the cache when one is configured
func (c *RoleCache) classify(id string, attrs map[string]interface{}) Role {
	if c == nil {
		return Classify(id, attrs)
	}
	if r, ok := c.Get(id); ok {
		return r
	}
	return c.Set(id, Classify(id, attrs))
}
