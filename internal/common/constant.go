package common

// AuthorizationScheme prefixes the session token in the Authorization header.
const AuthorizationScheme = "Bearer "

// SnapshotTimeLayout is the layout of the writtenOn stamp in snapshots.
const SnapshotTimeLayout = "2006-01-02 15:04:05"
