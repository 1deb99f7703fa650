// Package devlink is the core of a developer social network service: user
// accounts, developer profiles, and a post feed behind a JWT gate.
//
// Accounts and tokens:
//   - Auther handles registration and login. Both end in a signed HS256
//     token whose uid claim carries the user id. Login failures are
//     indistinguishable between unknown email and wrong password.
//   - TokenService signs and verifies tokens. Verification failures map to
//     ErrTokenExpired or ErrTokenMalformed, never to raw parser errors.
//   - The middleware/tokenauth package guards private routes. It reads the
//     bare token from the x-auth-token header and stores the resolved
//     claims on the request context.
//
// Profiles and posts:
//   - A Profile belongs to exactly one user and embeds its experience,
//     education, skills, and social link documents as JSON columns. The row
//     is the unit of write atomicity.
//   - A Post denormalizes the author's name and avatar at creation time and
//     embeds its likes and comments. One like per user per post.
//   - RepositoryManager exposes the Users, Profiles, and Posts repositories
//     plus RunInTx for multi-table operations such as account deletion.
//
// HTTP controllers register under /api/users, /api/auth, /api/profile, and
// /api/posts, all rendering the {"msg": ...} and {"errors": [{"msg": ...}]}
// error envelopes via WriteError.
package devlink
