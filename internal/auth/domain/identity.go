package domain

// ExternalIdentity is what a federated identity provider vouched for after
// verifying its token.
type ExternalIdentity struct {
	Provider      string
	Subject       string
	Email         string // normalized
	EmailVerified bool
	Name          string
	Picture       string
	OrgHint       string // e.g. Google Workspace hosted domain
}
