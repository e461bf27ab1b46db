package copybackend

// WhiteoutPrefix marks a regular file as an AUFS whiteout: deleting the
// sibling entry named by the basename with this prefix stripped.
const WhiteoutPrefix = ".wh."

// OpaqueWhiteoutMarker, when present as a file's exact basename, marks its
// containing directory as opaque: lower layers' contents of that directory
// must be discarded before this layer's own contents are applied.
const OpaqueWhiteoutMarker = ".wh..wh..opq"
