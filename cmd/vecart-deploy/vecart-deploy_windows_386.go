//go:build windows && 386

//go:generate goversioninfo -o=./winresources/resource.syso ./winresources/versioninfo.json

package main

import _ "vecartdeploy/cmd/vecart-deploy/winresources"
