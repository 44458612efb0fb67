package dump

// Version is the current release of dump.
const Version = "0.3.0"
