package domain

// MaxSearchCandidates caps every KNN query regardless of what the caller wants to show.
const MaxSearchCandidates = 100
