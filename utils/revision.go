package utils

// REVISION is stamped into every response envelope so mobile builds can
// detect incompatible backend rollouts.
const REVISION = "2.3.1"
