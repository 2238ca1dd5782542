package constants

const (
	APP_NAME = "Netsoc"

	// Home page pagination
	POSTS_PER_PAGE = 10
	// Library listing pagination
	BOOKS_PER_PAGE = 25

	// Classification prefix used when the classification service has no
	// record for an ISBN
	MISSING_DDC = "XXX.XX"

	// Substring marking the metadata provider's stock "no cover" image
	NO_PHOTO_MARKER = "nophoto"

	// Call number: first author's surname is truncated to this many runes
	CALL_NUMBER_SURNAME_LEN = 3
)
