// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
This package reads and builds public state for a request.

Public state -- HTTP cookies and the query string -- is received from the user
agent and can be anything. Nothing here trusts it for more than toggling
diagnostics.
*/
package untrusted
