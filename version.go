package main

// Version is the application version shown in the title bar.
const Version = "0.1.0"
