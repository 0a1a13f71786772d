//go:build windows && arm64

//go:generate goversioninfo -arm=true -64=true -o=./winresources/resource.syso ./winresources/versioninfo.json

package main

import _ "vecartdeploy/cmd/vecart-deploy/winresources"
