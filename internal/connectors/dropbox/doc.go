// Package dropbox fetches team members from the Dropbox Business API,
// one page per call, and normalises them into user records. The page
// cursor is the opaque members/list continuation cursor.
package dropbox
