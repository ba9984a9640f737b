package rules

import "filesorter/pkg/types"

// Defaults returns the predefined categories shipped with a fresh settings
// file. It is plain data and users may replace it entirely.
func Defaults() []types.SortRule {
	return []types.SortRule{
		// Archives
		{
			Extensions:  []string{"7z", "gz", "rar", "tar", "tgz", "xz", "zip", "zst"},
			MimeTypes:   []string{},
			Destination: "archives",
		},
		// Audio
		{
			Extensions:  []string{"flac", "mp3", "ogg", "opus", "wav"},
			MimeTypes:   []string{},
			Destination: "audio",
		},
		// Binary
		{
			Extensions:  []string{"exe", "bin"},
			MimeTypes:   []string{"application/x-pie-executable", "application/x-sharedlib"},
			Destination: "binary",
		},
		// Images
		{
			Extensions:  []string{"gif", "jpeg", "jpg", "png", "tif"},
			MimeTypes:   []string{},
			Destination: "images",
		},
		{
			Extensions:  []string{"avi", "mkv", "mp4"},
			MimeTypes:   []string{},
			Destination: "videos",
		},
		// Documents
		{
			Extensions:  []string{"csv", "djvu", "doc", "docx", "epub", "odt", "pdf", "ppt", "pptx", "txt"},
			MimeTypes:   []string{},
			Destination: "docs",
		},
		// Packages
		{Extensions: []string{"rpm", "spec"}, MimeTypes: []string{}, Destination: "rpm-packages"},
		{Extensions: []string{"deb"}, MimeTypes: []string{}, Destination: "debian-packages"},
		{Extensions: []string{"apk", "apkx"}, MimeTypes: []string{}, Destination: "apks"},
		// Other
		{Extensions: []string{"torrent"}, MimeTypes: []string{}, Destination: "torrents"},
		{Extensions: []string{"jar"}, MimeTypes: []string{}, Destination: "jars"},
		{Extensions: []string{"xml"}, MimeTypes: []string{}, Destination: "xml"},
		{Extensions: []string{"img"}, MimeTypes: []string{}, Destination: "raw"},
		{Extensions: []string{"eot", "ttf", "woff", "woff2"}, MimeTypes: []string{}, Destination: "fonts"},
		{Extensions: []string{"ovpn"}, MimeTypes: []string{}, Destination: "openvpn-profiles"},
		{Extensions: []string{"pcap"}, MimeTypes: []string{}, Destination: "captured-packages"},
		{Extensions: []string{"vsix"}, MimeTypes: []string{}, Destination: "vscode-extensions"},
	}
}
