package flows

// IssueFailureKind classifies issuance failures for root-level mapping.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureAccess
	IssueFailureRefresh
)

// IssueResult carries the minted pair or failure metadata.
type IssueResult struct {
	Failure      IssueFailureKind
	Err          error
	UserID       string
	FamilyID     string
	AccessToken  string
	RefreshToken string
}

// IssueDeps captures issuance flow dependencies.
type IssueDeps struct {
	NewFamilyID  func() string
	IssueAccess  func(userID string) (string, error)
	IssueRefresh func(userID, familyID string) (string, error)
}

// RunIssue mints an access/refresh pair for an already-verified identity.
// A fresh login always starts a new refresh-token family; no prior token is
// read or revoked.
func RunIssue(userID string, deps IssueDeps) IssueResult {
	familyID := deps.NewFamilyID()

	access, err := deps.IssueAccess(userID)
	if err != nil {
		return IssueResult{
			Failure:  IssueFailureAccess,
			Err:      err,
			UserID:   userID,
			FamilyID: familyID,
		}
	}

	refresh, err := deps.IssueRefresh(userID, familyID)
	if err != nil {
		return IssueResult{
			Failure:  IssueFailureRefresh,
			Err:      err,
			UserID:   userID,
			FamilyID: familyID,
		}
	}

	return IssueResult{
		Failure:      IssueFailureNone,
		UserID:       userID,
		FamilyID:     familyID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
