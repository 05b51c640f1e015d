package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// FilesCollection is the document collection holding uploaded-file records.
const FilesCollection = "files"

// UsersCollection is the document collection holding user profiles keyed by uid.
const UsersCollection = "users"
