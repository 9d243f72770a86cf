package params

// Version is the current module version.
const Version = "0.4.1"
