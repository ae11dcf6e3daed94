package tuvibe

import "strings"

// ResolveAssetURL passes absolute and rooted paths through unchanged and
// prefixes everything else with uploadRoot.
func ResolveAssetURL(uploadRoot, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if isAbsoluteAsset(path) || strings.HasPrefix(path, "/") {
		return path
	}
	if uploadRoot == "" {
		uploadRoot = DefaultUploadRoot
	}
	return strings.TrimRight(uploadRoot, "/") + "/" + path
}

func isAbsoluteAsset(path string) bool {
	if strings.HasPrefix(path, "data:") || strings.HasPrefix(path, "blob:") {
		return true
	}
	return strings.Contains(path, "://")
}

// AbsoluteURL resolves an asset against an origin so it can be fetched from
// outside a browser. Absolute URLs are returned unchanged.
func AbsoluteURL(origin, uploadRoot, path string) string {
	resolved := ResolveAssetURL(uploadRoot, path)
	if resolved == "" || isAbsoluteAsset(resolved) {
		return resolved
	}
	return strings.TrimRight(origin, "/") + resolved
}
