// Package authsdk is a Go client for the campus authentication service.
//
// The SDKClient covers the public endpoints: password login, student
// self-registration, the legacy email verification calls, Google sign-in
// and the password reset flow. Calls that yield a session token return a
// *Session, which can look up the account it belongs to:
//
//	client := authsdk.NewSDKClient("http://localhost:8080")
//	sess, err := client.Login(ctx, "ada@example.edu", "hunter22")
//	if err != nil {
//		var apiErr *authsdk.APIError
//		if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeInvalidCredentials {
//			// wrong email or password
//		}
//		return err
//	}
//	me, err := sess.Me(ctx)
//
// Failed requests come back as *APIError. errors.Is matches them against
// the predefined values by code, e.g. errors.Is(err, authsdk.ErrUserNotFound).
//
// The APIError type is shared with the server, which writes its responses
// through APIError.WriteError.
package authsdk
